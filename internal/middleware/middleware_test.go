package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/projecttime-api/internal/auth"
	"github.com/yukikurage/projecttime-api/internal/constants"
	apierrors "github.com/yukikurage/projecttime-api/internal/errors"
	"github.com/yukikurage/projecttime-api/internal/models"
	"github.com/yukikurage/projecttime-api/internal/repository"
	"github.com/yukikurage/projecttime-api/internal/testutil"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func issue(t *testing.T, tokens *auth.TokenService, user *models.User) string {
	t.Helper()
	token, err := tokens.Issue(auth.Identity{
		UserID:         user.ID,
		OrganizationID: user.OrganizationID,
		Role:           user.Role,
		Email:          user.Email,
	})
	require.NoError(t, err)
	return token
}

func serve(r *gin.Engine, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRequireAuth(t *testing.T) {
	tokens := auth.NewTokenService("secret", time.Hour)
	user := &models.User{ID: "u1", OrganizationID: "o1", Role: models.RoleManager, Email: "m@x.test"}

	r := gin.New()
	r.GET("/", RequireAuth(tokens), func(c *gin.Context) {
		orgID, _ := GetOrganizationID(c)
		userID, _ := GetUserID(c)
		c.JSON(http.StatusOK, gin.H{"org": orgID, "user": userID, "role": GetRole(c)})
	})

	w := serve(r, "Bearer "+issue(t, tokens, user))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"org":"o1","user":"u1","role":"MANAGER"}`, w.Body.String())

	tests := []struct {
		name   string
		header string
		code   string
	}{
		{"missing header", "", apierrors.ErrCodeUnauthorized},
		{"wrong scheme", "Basic abc", apierrors.ErrCodeUnauthorized},
		{"garbage token", "Bearer abc.def.ghi", apierrors.ErrCodeInvalidToken},
		{"foreign signature", "Bearer " + issue(t, auth.NewTokenService("other", time.Hour), user), apierrors.ErrCodeInvalidToken},
		{"expired", "Bearer " + issue(t, auth.NewTokenService("secret", -time.Minute), user), apierrors.ErrCodeInvalidToken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(r, tt.header)
			assert.Equal(t, http.StatusUnauthorized, w.Code)

			var body apierrors.APIError
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.code, body.Code)
		})
	}
}

func TestBearerToken(t *testing.T) {
	assert.Equal(t, "abc", bearerToken("Bearer abc"))
	assert.Equal(t, "abc", bearerToken("bearer  abc "))
	assert.Empty(t, bearerToken("abc"))
	assert.Empty(t, bearerToken(""))
}

func TestRequireRole(t *testing.T) {
	r := gin.New()
	r.GET("/", func(c *gin.Context) {
		c.Set(constants.ContextKeyRole, models.UserRole(c.Query("role")))
	}, RequireRole(models.RoleOwner, models.RoleAdmin), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	for role, want := range map[models.UserRole]int{
		models.RoleOwner:      http.StatusNoContent,
		models.RoleAdmin:      http.StatusNoContent,
		models.RoleTeamMember: http.StatusForbidden,
		models.RoleClient:     http.StatusForbidden,
	} {
		req := httptest.NewRequest(http.MethodGet, "/?role="+string(role), nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, want, w.Code, role)
	}
}

func TestRequireActiveUser(t *testing.T) {
	db := testutil.NewTestDB(t)
	org := testutil.CreateOrganization(t, db, "acme")
	active := testutil.CreateUser(t, db, org.ID, "a@acme.test", models.RoleTeamMember)
	inactive := testutil.CreateUser(t, db, org.ID, "b@acme.test", models.RoleTeamMember)
	require.NoError(t, db.Model(inactive).Update("active", false).Error)

	tokens := auth.NewTokenService("secret", time.Hour)
	r := gin.New()
	r.GET("/", RequireAuth(tokens), RequireActiveUser(repository.NewUserRepository(db)), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	assert.Equal(t, http.StatusNoContent, serve(r, "Bearer "+issue(t, tokens, active)).Code)
	assert.Equal(t, http.StatusUnauthorized, serve(r, "Bearer "+issue(t, tokens, inactive)).Code)

	ghost := &models.User{ID: "ghost", OrganizationID: org.ID, Role: models.RoleAdmin}
	assert.Equal(t, http.StatusUnauthorized, serve(r, "Bearer "+issue(t, tokens, ghost)).Code)
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(constants.ContextKeyRequestID))
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(constants.RequestIDHeader, "req-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "req-123", w.Header().Get(constants.RequestIDHeader))
	assert.Equal(t, "req-123", w.Body.String())

	w = serve(r, "")
	assert.NotEmpty(t, w.Header().Get(constants.RequestIDHeader))
}
