package http_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	authhttp "gomarket/internal/auth/adapter/http"
	"gomarket/internal/auth/domain/model"
	"gomarket/internal/shared/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

const testCookieName = "gm_session"

type MiddlewareTestSuite struct {
	suite.Suite
	app        *fiber.App
	sessions   *MockSessionManager
	middleware *authhttp.SessionMiddleware
}

func (suite *MiddlewareTestSuite) SetupTest() {
	suite.app = fiber.New()
	suite.sessions = new(MockSessionManager)
	suite.middleware = authhttp.NewSessionMiddleware(suite.sessions, testCookieName)
}

func (suite *MiddlewareTestSuite) record(role model.Role) *model.SessionRecord {
	now := time.Now().UnixMilli()
	return &model.SessionRecord{
		SessionID:    "sess-1",
		UserID:       "user-1",
		Email:        "user@example.com",
		Role:         role,
		CreatedAt:    now,
		ExpiresAt:    now + time.Hour.Milliseconds(),
		LastActivity: now,
	}
}

func (suite *MiddlewareTestSuite) request(cookie string) *http.Response {
	req := httptest.NewRequest("GET", "/protected", nil)
	if cookie != "" {
		req.AddCookie(&http.Cookie{Name: testCookieName, Value: cookie})
	}
	resp, err := suite.app.Test(req)
	suite.Require().NoError(err)
	return resp
}

func (suite *MiddlewareTestSuite) TestProtect_ValidSession() {
	suite.sessions.On("Resolve", mock.Anything, "sess-1").Return(suite.record(model.RoleUser), nil)

	suite.app.Get("/protected", suite.middleware.Protect(), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	resp := suite.request("sess-1")
	assert.Equal(suite.T(), fiber.StatusOK, resp.StatusCode)
	suite.sessions.AssertExpectations(suite.T())
}

func (suite *MiddlewareTestSuite) TestProtect_NoCookie() {
	suite.app.Get("/protected", suite.middleware.Protect(), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	resp := suite.request("")
	assert.Equal(suite.T(), fiber.StatusUnauthorized, resp.StatusCode)
	suite.sessions.AssertNotCalled(suite.T(), "Resolve", mock.Anything, mock.Anything)
}

func (suite *MiddlewareTestSuite) TestProtect_UnknownSession() {
	suite.sessions.On("Resolve", mock.Anything, "ghost").Return(nil, nil)

	suite.app.Get("/protected", suite.middleware.Protect(), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	resp := suite.request("ghost")
	assert.Equal(suite.T(), fiber.StatusUnauthorized, resp.StatusCode)
}

func (suite *MiddlewareTestSuite) TestProtect_StorageErrorFailsClosed() {
	suite.sessions.On("Resolve", mock.Anything, "sess-1").Return(nil, errors.New("store down"))

	suite.app.Get("/protected", suite.middleware.Protect(), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	resp := suite.request("sess-1")
	assert.Equal(suite.T(), fiber.StatusUnauthorized, resp.StatusCode)
}

func (suite *MiddlewareTestSuite) TestRequireRole_Allowed() {
	suite.sessions.On("Resolve", mock.Anything, "sess-1").Return(suite.record(model.RoleAdmin), nil)

	suite.app.Get("/protected", suite.middleware.Protect(), suite.middleware.RequireRole(model.RoleAdmin), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	resp := suite.request("sess-1")
	assert.Equal(suite.T(), fiber.StatusOK, resp.StatusCode)
}

func (suite *MiddlewareTestSuite) TestRequireRole_WrongRoleGets403Not401() {
	suite.sessions.On("Resolve", mock.Anything, "sess-1").Return(suite.record(model.RoleUser), nil)

	suite.app.Get("/protected", suite.middleware.Protect(), suite.middleware.RequireRole(model.RoleAdmin), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	resp := suite.request("sess-1")
	assert.Equal(suite.T(), fiber.StatusForbidden, resp.StatusCode)
}

func (suite *MiddlewareTestSuite) TestRequireRole_AcceptsAnyListedRole() {
	suite.sessions.On("Resolve", mock.Anything, "sess-1").Return(suite.record(model.RoleSeller), nil)

	suite.app.Get("/protected", suite.middleware.Protect(), suite.middleware.RequireRole(model.RoleSeller, model.RoleAdmin), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	resp := suite.request("sess-1")
	assert.Equal(suite.T(), fiber.StatusOK, resp.StatusCode)
}

func (suite *MiddlewareTestSuite) TestRequireRole_StandaloneUnauthenticated() {
	suite.app.Get("/protected", suite.middleware.RequireRole(model.RoleAdmin), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	resp := suite.request("")
	assert.Equal(suite.T(), fiber.StatusUnauthorized, resp.StatusCode)
}

func (suite *MiddlewareTestSuite) TestRequestID_VisibleToHandlers() {
	suite.sessions.On("Resolve", mock.Anything, "sess-1").Return(suite.record(model.RoleUser), nil)

	var seenRequestID string
	suite.app.Use(suite.middleware.RequestID())
	suite.app.Get("/protected", suite.middleware.Protect(), func(c *fiber.Ctx) error {
		rid, err := utils.GetRequestIDFromContext(c.UserContext())
		if err != nil {
			return c.SendStatus(fiber.StatusInternalServerError)
		}
		seenRequestID = rid
		return c.SendStatus(fiber.StatusOK)
	})

	resp := suite.request("sess-1")
	assert.Equal(suite.T(), fiber.StatusOK, resp.StatusCode)
	assert.NotEmpty(suite.T(), seenRequestID)
	assert.Equal(suite.T(), resp.Header.Get("X-Request-ID"), seenRequestID)
}

func TestMiddlewareTestSuite(t *testing.T) {
	suite.Run(t, new(MiddlewareTestSuite))
}
