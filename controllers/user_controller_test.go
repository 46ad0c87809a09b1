package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kendall-kelly/canteen-meals-api/config"
	"github.com/kendall-kelly/canteen-meals-api/models"
	"github.com/kendall-kelly/canteen-meals-api/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupMockAuth0Server creates a mock HTTP server that simulates Auth0's /userinfo endpoint
func setupMockAuth0Server(userInfoMap map[string]*services.Auth0UserInfo) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/userinfo" {
			w.WriteHeader(http.StatusNotFound)
			return
		}

		authHeader := r.Header.Get("Authorization")
		if len(authHeader) < 7 {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		userInfo, exists := userInfoMap[authHeader[7:]]
		if !exists {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(userInfo)
	}))
}

func TestCreateUser(t *testing.T) {
	db := setupTestDB(t)

	mockServer := setupMockAuth0Server(map[string]*services.Auth0UserInfo{
		"token-admin":    {Sub: "auth0|admin", Email: "admin@example.com", Name: "Admin User"},
		"token-operator": {Sub: "auth0|op", Email: "op@example.com", Name: "Till Operator"},
		"token-norole":   {Sub: "auth0|norole", Email: "norole@example.com", Name: "No Role"},
		"token-noemail":  {Sub: "auth0|noemail", Name: "No Email"},
		"token-dupemail": {Sub: "auth0|dup", Email: "op@example.com", Name: "Duplicate"},
	})
	defer mockServer.Close()
	config.SetConfig(&config.Config{Auth0Domain: mockServer.URL})

	tests := []struct {
		name           string
		auth0ID        string
		role           string
		accessToken    string
		expectedStatus int
		expectedCode   string
		expectedRole   string
	}{
		{"Create admin from role claim", "auth0|admin", "admin", "token-admin", http.StatusCreated, "", models.RoleAdmin},
		{"Create operator", "auth0|op", "operator", "token-operator", http.StatusCreated, "", models.RoleOperator},
		{"Unknown role claim defaults to operator", "auth0|norole", "", "token-norole", http.StatusCreated, "", models.RoleOperator},
		{"Fail when Auth0 omits the email", "auth0|noemail", "", "token-noemail", http.StatusBadRequest, "MISSING_EMAIL", ""},
		{"Fail when Auth0 rejects the token", "auth0|bad", "", "token-unknown", http.StatusInternalServerError, "AUTH0_ERROR", ""},
		{"Fail when the profile exists", "auth0|op", "operator", "token-operator", http.StatusConflict, "USER_EXISTS", ""},
		{"Fail when the email is taken", "auth0|dup", "", "token-dupemail", http.StatusConflict, "USER_EXISTS", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := setupTestRouter()
			router.Use(mockAuthMiddleware(tt.auth0ID, tt.role, tt.accessToken))
			router.POST("/api/v1/users", CreateUser)

			w := performRequest(router, http.MethodPost, "/api/v1/users", nil)

			assert.Equal(t, tt.expectedStatus, w.Code, w.Body.String())
			if tt.expectedCode != "" {
				assert.Equal(t, tt.expectedCode, errorCode(t, w))
				return
			}
			data := decodeResponse(t, w)["data"].(map[string]interface{})
			assert.Equal(t, tt.auth0ID, data["auth0_id"])
			assert.Equal(t, tt.expectedRole, data["role"])
		})
	}

	var count int64
	db.Model(&models.User{}).Count(&count)
	assert.Equal(t, int64(3), count)
}

type stubUserInfo struct {
	info *services.Auth0UserInfo
}

func (s stubUserInfo) GetUserInfo(_ context.Context, _ string) (*services.Auth0UserInfo, error) {
	return s.info, nil
}

func TestCreateUser_MissingName(t *testing.T) {
	setupTestDB(t)
	original := newUserInfoProvider
	newUserInfoProvider = func(*config.Config) services.UserInfoProvider {
		return stubUserInfo{info: &services.Auth0UserInfo{Email: "x@example.com"}}
	}
	t.Cleanup(func() { newUserInfoProvider = original })

	router := setupTestRouter()
	router.Use(mockAuthMiddleware("auth0|x", "", "token"))
	router.POST("/api/v1/users", CreateUser)

	w := performRequest(router, http.MethodPost, "/api/v1/users", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "MISSING_NAME", errorCode(t, w))
}

func TestMyProfile(t *testing.T) {
	db := setupTestDB(t)
	canteen := setupCanteen(t, db, 1)
	operator := canteen.seedOperator(t, "auth0|op", models.RoleOperator)
	other := canteen.seedOperator(t, "auth0|other", models.RoleOperator)

	router := operatorRouter(operator)
	router.GET("/api/v1/users/me", GetMyProfile)
	router.PUT("/api/v1/users/me", UpdateMyProfile)

	w := performRequest(router, http.MethodGet, "/api/v1/users/me", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, operator.Email, decodeResponse(t, w)["data"].(map[string]interface{})["email"])

	w = performRequest(router, http.MethodPut, "/api/v1/users/me", map[string]interface{}{"name": "Renamed"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Renamed", decodeResponse(t, w)["data"].(map[string]interface{})["name"])

	w = performRequest(router, http.MethodPut, "/api/v1/users/me", map[string]interface{}{"email": "not-an-email"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", errorCode(t, w))

	w = performRequest(router, http.MethodPut, "/api/v1/users/me", map[string]interface{}{"email": other.Email})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "EMAIL_EXISTS", errorCode(t, w))
}

func TestMyProfile_NotProvisioned(t *testing.T) {
	setupTestDB(t)

	router := operatorRouter(&models.User{Auth0ID: "auth0|nobody", Role: models.RoleOperator})
	router.GET("/api/v1/users/me", GetMyProfile)

	w := performRequest(router, http.MethodGet, "/api/v1/users/me", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "USER_NOT_FOUND", errorCode(t, w))
}
