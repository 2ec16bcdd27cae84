package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type loginForm struct {
	Email    string `form:"email" validate:"required,email,max=254"`
	Password string `form:"password" validate:"required,max=512"`
}

func TestFieldValidator_Struct(t *testing.T) {
	tests := []struct {
		name string
		form loginForm
		want map[string]string
	}{
		{name: "valid", form: loginForm{Email: "a@b.fr", Password: "x"}, want: map[string]string{}},
		{name: "missing both", form: loginForm{}, want: map[string]string{
			"email":    "Ce champ est obligatoire.",
			"password": "Ce champ est obligatoire.",
		}},
		{name: "bad email", form: loginForm{Email: "nope", Password: "x"}, want: map[string]string{
			"email": "Adresse e-mail invalide.",
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fv := New()
			require.NoError(t, fv.Struct(tt.form))
			assert.Equal(t, tt.want, fv.Errors())
			assert.Equal(t, len(tt.want) == 0, fv.Valid())
		})
	}
}

func TestFieldValidator_AddKeepsFirst(t *testing.T) {
	fv := New()
	fv.Add("email", "first").Add("email", "second")
	assert.Equal(t, "first", fv.Errors()["email"])
	assert.False(t, fv.Valid())
}

func TestFieldValidator_NonStruct(t *testing.T) {
	require.Error(t, New().Struct("not a struct"))
}
