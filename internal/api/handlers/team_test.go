package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"dashboard-backend/internal/api/handlers"
	apperrors "dashboard-backend/internal/errors"
	"dashboard-backend/internal/mocks"
	"dashboard-backend/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

type TeamHandlerTestSuite struct {
	suite.Suite
	ctrl          *gomock.Controller
	mockTeamSvc   *mocks.MockTeamServiceInterface
	mockAccessSvc *mocks.MockAccessServiceInterface
	handler       *handlers.TeamHandler
	router        *gin.Engine
	userID        uuid.UUID
}

func (suite *TeamHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	suite.ctrl = gomock.NewController(suite.T())
	suite.mockTeamSvc = mocks.NewMockTeamServiceInterface(suite.ctrl)
	suite.mockAccessSvc = mocks.NewMockAccessServiceInterface(suite.ctrl)
	suite.handler = handlers.NewTeamHandler(suite.mockTeamSvc, suite.mockAccessSvc)
	suite.userID = uuid.New()

	suite.router = gin.New()
	authed := suite.router.Group("", func(c *gin.Context) {
		c.Set("user_id", suite.userID.String())
	})
	authed.POST("/teams", suite.handler.Create)
	authed.GET("/teams", suite.handler.List)
	authed.GET("/teams/:id", suite.handler.Get)
	authed.PUT("/teams/:id", suite.handler.Update)
	authed.DELETE("/teams/:id", suite.handler.Delete)
	authed.POST("/teams/:id/members", suite.handler.AddMember)
	authed.PUT("/teams/:id/members/:userId", suite.handler.UpdateMemberRole)
	authed.DELETE("/teams/:id/members/:userId", suite.handler.RemoveMember)
	authed.POST("/teams/:id/permissions", suite.handler.AddPermission)
	authed.DELETE("/teams/:id/permissions", suite.handler.RemovePermission)
}

func (suite *TeamHandlerTestSuite) TearDownTest() {
	suite.ctrl.Finish()
}

func (suite *TeamHandlerTestSuite) doJSON(method, url string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		payload, _ := json.Marshal(body)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, url, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

func (suite *TeamHandlerTestSuite) TestCreate_OwnerOnly() {
	orgID := uuid.New()
	body := map[string]interface{}{
		"organization_id": orgID,
		"name":            "Platform",
	}

	suite.mockAccessSvc.EXPECT().IsOrganizationOwner(suite.userID, orgID).Return(false, nil)

	w := suite.doJSON(http.MethodPost, "/teams", body)

	assert.Equal(suite.T(), http.StatusForbidden, w.Code)
}

func (suite *TeamHandlerTestSuite) TestCreate_Success() {
	orgID := uuid.New()
	body := map[string]interface{}{
		"organization_id": orgID,
		"name":            "Platform",
	}

	suite.mockAccessSvc.EXPECT().IsOrganizationOwner(suite.userID, orgID).Return(true, nil)
	suite.mockTeamSvc.EXPECT().Create(suite.userID, gomock.Any()).Return(&service.TeamResponse{
		ID:             uuid.New(),
		Name:           "Platform",
		OrganizationID: orgID,
		Permissions:    []string{},
	}, nil)

	w := suite.doJSON(http.MethodPost, "/teams", body)

	assert.Equal(suite.T(), http.StatusCreated, w.Code)
}

func (suite *TeamHandlerTestSuite) TestUpdate_RequiresManage() {
	teamID := uuid.New()

	suite.mockAccessSvc.EXPECT().CanManageTeam(suite.userID, teamID).Return(false, nil)

	w := suite.doJSON(http.MethodPut, "/teams/"+teamID.String(), map[string]interface{}{"name": "Renamed"})

	assert.Equal(suite.T(), http.StatusForbidden, w.Code)
}

func (suite *TeamHandlerTestSuite) TestAddMember_Duplicate() {
	teamID := uuid.New()
	body := map[string]interface{}{"user_id": uuid.New()}

	suite.mockAccessSvc.EXPECT().CanManageTeam(suite.userID, teamID).Return(true, nil)
	suite.mockTeamSvc.EXPECT().AddMember(teamID, gomock.Any()).Return(nil, apperrors.ErrTeamMemberExists)

	w := suite.doJSON(http.MethodPost, "/teams/"+teamID.String()+"/members", body)

	assert.Equal(suite.T(), http.StatusConflict, w.Code)
}

func (suite *TeamHandlerTestSuite) TestAddMember_Success() {
	teamID := uuid.New()
	memberID := uuid.New()
	body := map[string]interface{}{"user_id": memberID, "role": "manager"}

	suite.mockAccessSvc.EXPECT().CanManageTeam(suite.userID, teamID).Return(true, nil)
	suite.mockTeamSvc.EXPECT().AddMember(teamID, gomock.Any()).DoAndReturn(
		func(id uuid.UUID, req *service.AddMemberRequest) (*service.TeamResponse, error) {
			assert.Equal(suite.T(), memberID, req.UserID)
			assert.Equal(suite.T(), "manager", req.Role)
			assert.Equal(suite.T(), suite.userID, req.AddedBy)
			return &service.TeamResponse{ID: teamID, MembersCount: 1}, nil
		})

	w := suite.doJSON(http.MethodPost, "/teams/"+teamID.String()+"/members", body)

	assert.Equal(suite.T(), http.StatusOK, w.Code)
}

func (suite *TeamHandlerTestSuite) TestRemoveMember_NotFound() {
	teamID := uuid.New()
	memberID := uuid.New()

	suite.mockAccessSvc.EXPECT().CanManageTeam(suite.userID, teamID).Return(true, nil)
	suite.mockTeamSvc.EXPECT().RemoveMember(teamID, memberID).Return(nil, apperrors.ErrTeamMemberNotFound)

	w := suite.doJSON(http.MethodDelete, "/teams/"+teamID.String()+"/members/"+memberID.String(), nil)

	assert.Equal(suite.T(), http.StatusNotFound, w.Code)
}

func (suite *TeamHandlerTestSuite) TestUpdateMemberRole_Success() {
	teamID := uuid.New()
	memberID := uuid.New()

	suite.mockAccessSvc.EXPECT().CanManageTeam(suite.userID, teamID).Return(true, nil)
	suite.mockTeamSvc.EXPECT().UpdateMemberRole(teamID, memberID, "manager").Return(&service.TeamResponse{
		ID: teamID,
	}, nil)

	w := suite.doJSON(http.MethodPut, "/teams/"+teamID.String()+"/members/"+memberID.String(),
		map[string]interface{}{"role": "manager"})

	assert.Equal(suite.T(), http.StatusOK, w.Code)
}

func (suite *TeamHandlerTestSuite) TestAddPermission_Success() {
	teamID := uuid.New()

	suite.mockAccessSvc.EXPECT().CanManageTeam(suite.userID, teamID).Return(true, nil)
	suite.mockTeamSvc.EXPECT().AddPermission(teamID, "reports:read").Return(&service.TeamResponse{
		ID:          teamID,
		Permissions: []string{"reports:read"},
	}, nil)

	w := suite.doJSON(http.MethodPost, "/teams/"+teamID.String()+"/permissions",
		map[string]interface{}{"permission": "reports:read"})

	assert.Equal(suite.T(), http.StatusOK, w.Code)
}

func (suite *TeamHandlerTestSuite) TestGet_NotFound() {
	teamID := uuid.New()

	suite.mockTeamSvc.EXPECT().GetByID(teamID).Return(nil, apperrors.ErrTeamNotFound)

	w := suite.doJSON(http.MethodGet, "/teams/"+teamID.String(), nil)

	assert.Equal(suite.T(), http.StatusNotFound, w.Code)
}

func (suite *TeamHandlerTestSuite) TestGet_InvalidID() {
	w := suite.doJSON(http.MethodGet, "/teams/not-a-uuid", nil)

	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
}

func (suite *TeamHandlerTestSuite) TestList_ByOrganization() {
	orgID := uuid.New()

	suite.mockTeamSvc.EXPECT().GetByOrganization(orgID, 1, 20).Return(&service.TeamListResponse{
		Teams:    []service.TeamResponse{},
		Total:    0,
		Page:     1,
		PageSize: 20,
	}, nil)

	w := suite.doJSON(http.MethodGet, "/teams?organization_id="+orgID.String(), nil)

	assert.Equal(suite.T(), http.StatusOK, w.Code)
}

func (suite *TeamHandlerTestSuite) TestList_OwnTeams() {
	suite.mockTeamSvc.EXPECT().GetByUser(suite.userID).Return([]service.TeamResponse{
		{ID: uuid.New(), Name: "Platform"},
	}, nil)

	w := suite.doJSON(http.MethodGet, "/teams", nil)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var got []service.TeamResponse
	assert.NoError(suite.T(), json.Unmarshal(w.Body.Bytes(), &got))
	assert.Len(suite.T(), got, 1)
}

func TestTeamHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(TeamHandlerTestSuite))
}
