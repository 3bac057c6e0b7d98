package middleware

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"

	dbpkg "pushpress/internal/db"
	httpctx "pushpress/internal/http/ctx"
)

func seedAPIKey(t *testing.T, store dbpkg.Store, key string, active bool) {
	t.Helper()
	user := &dbpkg.User{Username: "owner", PasswordHash: "x"}
	require.NoError(t, store.CreateUser(user))
	require.NoError(t, store.CreateAPIKey(&dbpkg.APIKey{
		UserID:      user.ID,
		Name:        "cms",
		Environment: "prod",
		Key:         key,
		Active:      active,
	}))
}

func TestBearerAuthAcceptsActiveKey(t *testing.T) {
	store := dbpkg.NewMemoryStore()
	seedAPIKey(t, store, "pp_valid", true)

	called := false
	handler := BearerAuth(store)(func(ctx *fasthttp.RequestCtx) {
		called = true
		ak, ok := httpctx.APIKeyFromCtx(ctx)
		require.True(t, ok)
		assert.Equal(t, "cms", ak.Name)
		assert.Equal(t, "owner", ak.User.Username)
	})

	ctx := &fasthttp.RequestCtx{}
	ctx.Request.Header.Set("Authorization", "Bearer pp_valid")
	handler(ctx)

	assert.True(t, called)
	assert.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
}

func TestBearerAuthRejects(t *testing.T) {
	store := dbpkg.NewMemoryStore()
	seedAPIKey(t, store, "pp_valid", true)
	seedAPIKey2 := func(key string) {
		require.NoError(t, store.CreateAPIKey(&dbpkg.APIKey{UserID: 1, Name: "off", Environment: "prod", Key: key, Active: false}))
	}
	seedAPIKey2("pp_disabled")

	cases := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"not bearer", "Basic abc"},
		{"empty token", "Bearer "},
		{"unknown key", "Bearer pp_wrong"},
		{"disabled key", "Bearer pp_disabled"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			called := false
			handler := BearerAuth(store)(func(ctx *fasthttp.RequestCtx) { called = true })

			ctx := &fasthttp.RequestCtx{}
			if tc.header != "" {
				ctx.Request.Header.Set("Authorization", tc.header)
			}
			handler(ctx)

			assert.False(t, called)
			assert.Equal(t, fasthttp.StatusUnauthorized, ctx.Response.StatusCode())
		})
	}
}
