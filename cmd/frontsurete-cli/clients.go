package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	redisadapter "github.com/ousseynou98/frontsurete-sub001/internal/adapters/redis"
	"github.com/ousseynou98/frontsurete-sub001/internal/bootstrap"
	"github.com/ousseynou98/frontsurete-sub001/internal/service"
	"github.com/redis/go-redis/v9"
)

//nolint:ireturn // returning redis.UniversalClient keeps sentinel/cluster support flexible.
func connectRedis(cmdCtx *commandContext) (redis.UniversalClient, error) {
	client, err := bootstrap.ConnectRedis(bootstrap.RedisConnectConfig{Redis: cmdCtx.Config.Redis, Logger: cmdCtx.Logger})
	if err != nil {
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	return client, nil
}

func closeRedis(cmdCtx *commandContext, client redis.UniversalClient) {
	if err := client.Close(); err != nil {
		cmdCtx.Logger.Warn("redis close failed", "error", err)
	}
}

type clientEntry struct {
	ID       string
	Keys     int
	TokenTTL time.Duration
	HasToken bool
}

func runListClients(cmdCtx *commandContext, _ []string) error {
	ctx, cancel := context.WithTimeout(cmdCtx.Ctx, 2*time.Minute)
	defer cancel()

	client, err := connectRedis(cmdCtx)
	if err != nil {
		return err
	}
	defer closeRedis(cmdCtx, client)

	entries, err := scanClients(ctx, client, cmdCtx.Config.Redis.KeyPrefix, cmdCtx.Config.Auth.StorageKeys.Token)
	if err != nil {
		return err
	}
	return printClients(cmdCtx.Stdout, entries)
}

// scanClients groups every key under prefix by the client id inside its hash tag.
func scanClients(ctx context.Context, client redis.UniversalClient, prefix, tokenKey string) ([]clientEntry, error) {
	byID := map[string]*clientEntry{}
	iter := client.Scan(ctx, 0, prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		id, name, ok := splitClientKey(prefix, key)
		if !ok {
			continue
		}
		e := byID[id]
		if e == nil {
			e = &clientEntry{ID: id}
			byID[id] = e
		}
		e.Keys++
		if name == tokenKey {
			ttl, err := client.TTL(ctx, key).Result()
			if err != nil {
				return nil, fmt.Errorf("redis ttl %s: %w", key, err)
			}
			e.HasToken = true
			e.TokenTTL = ttl
		}
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("redis scan: %w", err)
	}

	out := make([]clientEntry, 0, len(byID))
	for _, e := range byID {
		out = append(out, *e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// splitClientKey parses "<prefix>{<id>}:<name>".
func splitClientKey(prefix, key string) (string, string, bool) {
	rest, ok := strings.CutPrefix(key, prefix+"{")
	if !ok {
		return "", "", false
	}
	id, name, ok := strings.Cut(rest, "}:")
	if !ok || id == "" {
		return "", "", false
	}
	return id, name, true
}

func printClients(w io.Writer, entries []clientEntry) error {
	if err := writef(w, "\nClient namespaces in Redis\n"); err != nil {
		return err
	}
	if len(entries) == 0 {
		return writeln(w, "(no clients found)")
	}
	for _, e := range entries {
		session := "anonymous"
		if e.HasToken {
			session = "signed in, expires in " + renderTTL(e.TokenTTL)
		}
		if err := writef(w, "  %s  keys=%d  %s\n", e.ID, e.Keys, session); err != nil {
			return err
		}
	}
	return writef(w, "\nTotal clients: %d\n", len(entries))
}

func renderTTL(d time.Duration) string {
	switch {
	case d == -1:
		return "never"
	case d < 0:
		return "unknown"
	default:
		return d.Round(time.Second).String()
	}
}

type clearClientOptions struct {
	ID  string
	Yes bool
}

func parseClearClientFlags(args []string, out io.Writer) (clearClientOptions, error) {
	fs := flag.NewFlagSet("clear-client", flag.ContinueOnError)
	fs.SetOutput(out)

	var opts clearClientOptions
	fs.StringVar(&opts.ID, "id", "", "Client id (the fs_client cookie value)")
	fs.BoolVar(&opts.Yes, "yes", false, "Skip confirmation prompt")

	if err := fs.Parse(args); err != nil {
		return clearClientOptions{}, err
	}
	opts.ID = strings.TrimSpace(opts.ID)
	if _, err := uuid.Parse(opts.ID); err != nil {
		return clearClientOptions{}, fmt.Errorf("--id must be a client uuid: %w", err)
	}
	return opts, nil
}

func confirm(in io.Reader, out io.Writer, action string) error {
	if err := writef(out, "About to %s. Continue? [y/N]: ", action); err != nil {
		return err
	}
	sc := bufio.NewScanner(in)
	if !sc.Scan() {
		return errors.New("aborted")
	}
	switch strings.ToLower(strings.TrimSpace(sc.Text())) {
	case "y", "yes":
		return nil
	default:
		return errors.New("aborted")
	}
}

func runClearClient(cmdCtx *commandContext, args []string) error {
	opts, err := parseClearClientFlags(args, cmdCtx.Stdout)
	if err != nil {
		return err
	}
	if !opts.Yes {
		if err := confirm(cmdCtx.Stdin, cmdCtx.Stdout, "sign out client "+opts.ID); err != nil {
			return err
		}
	}

	client, err := connectRedis(cmdCtx)
	if err != nil {
		return err
	}
	defer closeRedis(cmdCtx, client)

	return clearClient(cmdCtx, client, opts.ID)
}

func clearClient(cmdCtx *commandContext, client redis.UniversalClient, id string) error {
	storage, err := redisadapter.NewStorage(redisadapter.StorageOptions{
		Client:   client,
		Prefix:   cmdCtx.Config.Redis.KeyPrefix,
		ClientID: id,
		TTL:      cmdCtx.Config.Redis.SessionTTL,
	})
	if err != nil {
		return err
	}
	store, err := service.NewCredentialStore(service.CredentialStoreOptions{
		Storage:   storage,
		Keys:      bootstrap.StorageKeys(cmdCtx.Config.Auth.StorageKeys),
		Namespace: storage.Namespace(),
	})
	if err != nil {
		return err
	}
	if err := store.Clear(cmdCtx.Ctx); err != nil {
		return err
	}
	cmdCtx.Logger.Info("client signed out", "client_id", id)
	return writef(cmdCtx.Stdout, "Client %s signed out.\n", id)
}
