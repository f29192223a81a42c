package client

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/dmitrijs2005/yamaphone/internal/client/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDoer struct {
	calls []Request
	resp  string
	err   error
}

func (f *fakeDoer) Do(ctx context.Context, req Request, out any) error {
	f.calls = append(f.calls, req)
	if f.err != nil {
		return f.err
	}
	if out != nil && f.resp != "" {
		return json.Unmarshal([]byte(f.resp), out)
	}
	return nil
}

func TestValidateCredentials(t *testing.T) {
	tests := []struct {
		name    string
		creds   models.Credentials
		wantErr bool
	}{
		{name: "ok", creds: models.Credentials{Username: "alice", Password: "secret"}},
		{name: "empty username", creds: models.Credentials{Password: "secret"}, wantErr: true},
		{name: "empty password", creds: models.Credentials{Username: "alice"}, wantErr: true},
		{name: "both empty", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCredentials(tt.creds)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrValidation)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestAuthAPI_Login_Success(t *testing.T) {
	d := &fakeDoer{resp: `{"token":"T","user":{"id":1,"username":"alice","adm_bool":true}}`}
	a := NewAuthAPI(d)

	resp, err := a.Login(context.Background(), "alice", "secret")
	require.NoError(t, err)

	assert.Equal(t, "T", resp.Token)
	require.NotNil(t, resp.User)
	assert.Equal(t, "alice", resp.User.Username)
	assert.True(t, resp.User.IsAdmin)

	require.Len(t, d.calls, 1)
	assert.Equal(t, http.MethodPost, d.calls[0].Method)
	assert.Equal(t, "/api/login", d.calls[0].Path)
	assert.Equal(t, models.Credentials{Username: "alice", Password: "secret"}, d.calls[0].Body)
}

func TestAuthAPI_Register_UsesRegisterEndpoint(t *testing.T) {
	d := &fakeDoer{resp: `{"token":"T","user":{"id":2,"username":"bob"}}`}
	a := NewAuthAPI(d)

	resp, err := a.Register(context.Background(), "bob", "pw")
	require.NoError(t, err)
	assert.False(t, resp.User.IsAdmin)
	assert.Equal(t, "/api/register", d.calls[0].Path)
}

func TestAuthAPI_Login_InvalidInputSkipsNetwork(t *testing.T) {
	d := &fakeDoer{}
	a := NewAuthAPI(d)

	_, err := a.Login(context.Background(), "", "")
	require.ErrorIs(t, err, ErrValidation)
	assert.Empty(t, d.calls)
}

func TestAuthAPI_Login_ErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{name: "401", err: &APIError{Status: 401, Kind: ErrInvalidCredentials}, want: ErrInvalidCredentials},
		{name: "400", err: &APIError{Status: 400, Kind: ErrRequestFailed}, want: ErrInvalidCredentials},
		{name: "409 on register", err: &APIError{Status: 409, Kind: ErrRequestFailed}, want: ErrInvalidCredentials},
		{name: "500", err: &APIError{Status: 500, Kind: ErrRequestFailed}, want: ErrRequestFailed},
		{name: "transport", err: &APIError{Kind: ErrTransport}, want: ErrTransport},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := NewAuthAPI(&fakeDoer{err: tt.err})
			_, err := a.Login(context.Background(), "alice", "secret")
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestAuthAPI_Login_IncompleteResponse(t *testing.T) {
	tests := []string{
		`{"user":{"id":1,"username":"alice"}}`,
		`{"token":"T"}`,
		`{}`,
	}

	for _, body := range tests {
		t.Run(body, func(t *testing.T) {
			a := NewAuthAPI(&fakeDoer{resp: body})
			_, err := a.Login(context.Background(), "alice", "secret")
			require.ErrorIs(t, err, ErrTransport)
		})
	}
}

func TestAuthAPI_Me(t *testing.T) {
	d := &fakeDoer{resp: `{"user":{"id":1,"username":"alice"}}`}
	a := NewAuthAPI(d)

	id, err := a.Me(context.Background(), "stored")
	require.NoError(t, err)
	assert.Equal(t, "alice", id.Username)

	require.Len(t, d.calls, 1)
	assert.Equal(t, "/api/me", d.calls[0].Path)
	assert.Equal(t, "Bearer stored", d.calls[0].Header.Get("Authorization"))
}

func TestAuthAPI_Me_WithoutUserIsInvalid(t *testing.T) {
	a := NewAuthAPI(&fakeDoer{resp: `{}`})
	_, err := a.Me(context.Background(), "stored")
	require.ErrorIs(t, err, ErrSessionInvalid)
}

func TestAuthAPI_Me_OverGateway(t *testing.T) {
	srv, seen := newBackend(t, http.StatusUnauthorized, `{"error":"expired"}`)
	a := NewAuthAPI(NewGateway(srv.URL))

	_, err := a.Me(context.Background(), "stale")
	require.ErrorIs(t, err, ErrSessionInvalid)
	assert.Equal(t, "Bearer stale", seen.auth)
}
