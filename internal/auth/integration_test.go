package auth_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"showcase-cms/internal/auth"
	"showcase-cms/internal/auth/testutil"
	"showcase-cms/internal/shared/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type AuthIntegrationTestSuite struct {
	suite.Suite
	app    *fiber.App
	module *auth.AuthModule
}

func (suite *AuthIntegrationTestSuite) SetupTest() {
	module, err := auth.NewAuthModule(context.Background(), testutil.Config(), logger.NewNopLogger(), nil)
	require.NoError(suite.T(), err)
	suite.module = module

	suite.app = fiber.New()
	api := suite.app.Group("/api/v1")
	module.RegisterRoutes(api)
	api.Put("/guarded", module.Protect(), func(c *fiber.Ctx) error { return c.SendStatus(http.StatusNoContent) })
}

func (suite *AuthIntegrationTestSuite) post(path string, body interface{}) (*http.Response, map[string]interface{}) {
	raw, err := json.Marshal(body)
	require.NoError(suite.T(), err)
	req := httptest.NewRequest("POST", path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")

	resp, err := suite.app.Test(req)
	require.NoError(suite.T(), err)
	var out map[string]interface{}
	require.NoError(suite.T(), json.NewDecoder(resp.Body).Decode(&out))
	return resp, out
}

func (suite *AuthIntegrationTestSuite) TestFirstOperatorThenClosed() {
	resp, body := suite.post("/api/v1/auth/register", testutil.Operator("first@example.com"))
	assert.Equal(suite.T(), http.StatusCreated, resp.StatusCode)
	token := body["data"].(map[string]interface{})["accessToken"].(string)
	assert.NotEmpty(suite.T(), token)

	resp, body = suite.post("/api/v1/auth/register", testutil.Operator("second@example.com"))
	assert.Equal(suite.T(), http.StatusForbidden, resp.StatusCode)
	assert.Equal(suite.T(), "registration_closed", body["error"])
}

func (suite *AuthIntegrationTestSuite) TestLoginGuardsWrites() {
	resp, _ := suite.post("/api/v1/auth/register", testutil.Operator("editor@example.com"))
	require.Equal(suite.T(), http.StatusCreated, resp.StatusCode)

	resp, body := suite.post("/api/v1/auth/login", map[string]string{
		"email":    "EDITOR@example.com",
		"password": testutil.StrongPassword,
	})
	require.Equal(suite.T(), http.StatusOK, resp.StatusCode)
	token := body["data"].(map[string]interface{})["accessToken"].(string)

	req := httptest.NewRequest("PUT", "/api/v1/guarded", nil)
	resp, err := suite.app.Test(req)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), http.StatusUnauthorized, resp.StatusCode)

	req = httptest.NewRequest("PUT", "/api/v1/guarded", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err = suite.app.Test(req)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), http.StatusNoContent, resp.StatusCode)
}

func (suite *AuthIntegrationTestSuite) TestLoginWrongPassword() {
	resp, _ := suite.post("/api/v1/auth/register", testutil.Operator("editor@example.com"))
	require.Equal(suite.T(), http.StatusCreated, resp.StatusCode)

	resp, body := suite.post("/api/v1/auth/login", map[string]string{"email": "editor@example.com", "password": "nope"})
	assert.Equal(suite.T(), http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(suite.T(), "unauthenticated", body["error"])
}

func TestAuthIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(AuthIntegrationTestSuite))
}
