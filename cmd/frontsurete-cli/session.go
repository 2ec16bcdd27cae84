package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/ousseynou98/frontsurete-sub001/internal/adapters/filestore"
	"github.com/ousseynou98/frontsurete-sub001/internal/apiclient"
	"github.com/ousseynou98/frontsurete-sub001/internal/bootstrap"
	domainauth "github.com/ousseynou98/frontsurete-sub001/internal/domain/auth"
	apperrors "github.com/ousseynou98/frontsurete-sub001/internal/errors"
	"github.com/ousseynou98/frontsurete-sub001/internal/ports"
	"github.com/ousseynou98/frontsurete-sub001/internal/service"
)

// errSessionExpired is returned when the API rejected the stored credential.
var errSessionExpired = errors.New("session expired")

// terminalLocation is where the terminal client "is" between commands.
const terminalLocation = "/terminal"

// terminalNavigator turns a navigation into a message on the terminal.
type terminalNavigator struct {
	out       io.Writer
	loginPath string
	location  string
}

var _ ports.Navigator = (*terminalNavigator)(nil)

func newTerminalNavigator(out io.Writer, loginPath string) *terminalNavigator {
	return &terminalNavigator{out: out, loginPath: loginPath, location: terminalLocation}
}

func (n *terminalNavigator) Location() string { return n.location }

func (n *terminalNavigator) Navigate(path string) {
	if path == n.location {
		return
	}
	n.location = path
	if path == n.loginPath {
		_ = writeln(n.out, "Session expirée. Reconnectez-vous avec: frontsurete-cli login")
		return
	}
	_ = writef(n.out, "-> %s\n", path)
}

func openCredentials(cmdCtx *commandContext) (*service.CredentialStore, error) {
	storage, err := filestore.New(cmdCtx.StoragePath)
	if err != nil {
		return nil, err
	}
	return service.NewCredentialStore(service.CredentialStoreOptions{
		Storage:   storage,
		Keys:      bootstrap.StorageKeys(cmdCtx.Config.Auth.StorageKeys),
		Namespace: storage.Namespace(),
	})
}

func newAPIClient(cmdCtx *commandContext) (*apiclient.Client, error) {
	return apiclient.New(apiclient.Options{
		BaseURL:          cmdCtx.Config.API.BaseURL,
		Timeout:          cmdCtx.Config.API.Timeout,
		LoginPath:        cmdCtx.Config.Auth.LoginPath,
		ErrorMessageExpr: cmdCtx.Config.API.ErrorMessageExpr,
		Logger:           cmdCtx.Logger,
	})
}

type loginOptions struct {
	Email    string
	Password string
}

func parseLoginFlags(args []string, out io.Writer) (loginOptions, error) {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	fs.SetOutput(out)

	var opts loginOptions
	fs.StringVar(&opts.Email, "email", "", "Account email (required)")
	fs.StringVar(&opts.Password, "password", "", "Password (read from stdin when omitted)")

	if err := fs.Parse(args); err != nil {
		return loginOptions{}, err
	}
	opts.Email = strings.TrimSpace(opts.Email)
	if opts.Email == "" {
		return loginOptions{}, errors.New("--email is required")
	}
	return opts, nil
}

func readPassword(in io.Reader, out io.Writer) (string, error) {
	if err := writef(out, "Mot de passe: "); err != nil {
		return "", err
	}
	sc := bufio.NewScanner(in)
	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return "", errors.New("read password: no input")
	}
	return strings.TrimRight(sc.Text(), "\r"), nil
}

func runLogin(cmdCtx *commandContext, args []string) error {
	opts, err := parseLoginFlags(args, cmdCtx.Stdout)
	if err != nil {
		return err
	}
	if opts.Password == "" {
		if opts.Password, err = readPassword(cmdCtx.Stdin, cmdCtx.Stdout); err != nil {
			return err
		}
	}

	store, err := openCredentials(cmdCtx)
	if err != nil {
		return err
	}
	api, err := newAPIClient(cmdCtx)
	if err != nil {
		return err
	}
	auth, err := bootstrap.BuildAuthService(bootstrap.AuthConfig{
		Auth:         cmdCtx.Config.Auth,
		API:          api,
		APILoginPath: cmdCtx.Config.API.LoginPath,
		Logger:       cmdCtx.Logger,
	})
	if err != nil {
		return err
	}

	res, err := auth.Login(cmdCtx.Ctx, store, ports.LoginInput{Email: opts.Email, Password: opts.Password})
	if err != nil {
		return err
	}
	return printSession(cmdCtx.Stdout, res.Session)
}

func runWhoami(cmdCtx *commandContext, _ []string) error {
	store, err := openCredentials(cmdCtx)
	if err != nil {
		return err
	}
	sess, err := service.NewSessionQuery(service.SessionQueryOptions{
		Credentials:      store,
		CheckTokenExpiry: cmdCtx.Config.Auth.CheckTokenExpiry,
		Logger:           cmdCtx.Logger,
	}).CurrentSession(cmdCtx.Ctx)
	if err != nil {
		return err
	}
	return printSession(cmdCtx.Stdout, sess)
}

func runLogout(cmdCtx *commandContext, _ []string) error {
	store, err := openCredentials(cmdCtx)
	if err != nil {
		return err
	}
	if err := store.Clear(cmdCtx.Ctx); err != nil {
		return err
	}
	return writeln(cmdCtx.Stdout, "Déconnecté.")
}

func runGet(cmdCtx *commandContext, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: frontsurete-cli get <path>")
	}
	store, err := openCredentials(cmdCtx)
	if err != nil {
		return err
	}
	api, err := newAPIClient(cmdCtx)
	if err != nil {
		return err
	}
	nav := newTerminalNavigator(cmdCtx.Stdout, cmdCtx.Config.Auth.LoginPath)

	var body json.RawMessage
	if err := api.With(store, nav).GetJSON(cmdCtx.Ctx, args[0], &body); err != nil {
		if apperrors.IsUnauthorized(err) {
			return errSessionExpired
		}
		return err
	}
	if len(body) == 0 {
		return nil
	}
	var pretty bytes.Buffer
	if err := json.Indent(&pretty, body, "", "  "); err != nil {
		return fmt.Errorf("format response: %w", err)
	}
	return writeln(cmdCtx.Stdout, pretty.String())
}

func printSession(w io.Writer, sess domainauth.Session) error {
	if !sess.Authenticated {
		return writeln(w, "Non connecté.")
	}
	if sess.Identity == nil {
		return writeln(w, "Connecté (identité indisponible).")
	}
	id := sess.Identity
	return writef(w, "Connecté en tant que %s <%s> (rôle: %s)\n", id.DisplayName, id.Email, id.Role)
}
