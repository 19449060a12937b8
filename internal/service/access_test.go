package service_test

import (
	"testing"

	"dashboard-backend/internal/database/models"
	"dashboard-backend/internal/mocks"
	"dashboard-backend/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
	"gorm.io/gorm"
)

type AccessServiceTestSuite struct {
	suite.Suite
	ctrl          *gomock.Controller
	mockOrgRepo   *mocks.MockOrganizationRepositoryInterface
	mockTeamRepo  *mocks.MockTeamRepositoryInterface
	accessService *service.AccessService
}

func (suite *AccessServiceTestSuite) SetupTest() {
	suite.ctrl = gomock.NewController(suite.T())
	suite.mockOrgRepo = mocks.NewMockOrganizationRepositoryInterface(suite.ctrl)
	suite.mockTeamRepo = mocks.NewMockTeamRepositoryInterface(suite.ctrl)
	suite.accessService = service.NewAccessService(suite.mockOrgRepo, suite.mockTeamRepo)
}

func (suite *AccessServiceTestSuite) TearDownTest() {
	suite.ctrl.Finish()
}

func (suite *AccessServiceTestSuite) TestIsOrganizationOwner() {
	ownerID := uuid.New()
	orgID := uuid.New()
	org := &models.Organization{
		BaseModel: models.BaseModel{ID: orgID},
		OwnerID:   ownerID,
	}

	suite.mockOrgRepo.EXPECT().GetByID(orgID).Return(org, nil).Times(2)

	isOwner, err := suite.accessService.IsOrganizationOwner(ownerID, orgID)
	assert.NoError(suite.T(), err)
	assert.True(suite.T(), isOwner)

	isOwner, err = suite.accessService.IsOrganizationOwner(uuid.New(), orgID)
	assert.NoError(suite.T(), err)
	assert.False(suite.T(), isOwner)
}

func (suite *AccessServiceTestSuite) TestIsOrganizationOwner_UnknownOrganization() {
	suite.mockOrgRepo.EXPECT().GetByID(gomock.Any()).Return(nil, gorm.ErrRecordNotFound)

	isOwner, err := suite.accessService.IsOrganizationOwner(uuid.New(), uuid.New())

	assert.NoError(suite.T(), err)
	assert.False(suite.T(), isOwner)
}

func (suite *AccessServiceTestSuite) TestCanManageTeam_OwnerWithoutMembership() {
	// The organization owner manages every team in the organization even when
	// not on the member list.
	ownerID := uuid.New()
	orgID := uuid.New()
	teamID := uuid.New()

	suite.mockTeamRepo.EXPECT().GetByID(teamID).Return(&models.Team{
		BaseModel:      models.BaseModel{ID: teamID},
		OrganizationID: orgID,
	}, nil)
	suite.mockOrgRepo.EXPECT().GetByID(orgID).Return(&models.Organization{
		BaseModel: models.BaseModel{ID: orgID},
		OwnerID:   ownerID,
	}, nil)

	canManage, err := suite.accessService.CanManageTeam(ownerID, teamID)

	assert.NoError(suite.T(), err)
	assert.True(suite.T(), canManage)
}

func (suite *AccessServiceTestSuite) TestCanManageTeam_ManagerRole() {
	userID := uuid.New()
	orgID := uuid.New()
	teamID := uuid.New()

	suite.mockTeamRepo.EXPECT().GetByID(teamID).Return(&models.Team{
		BaseModel:      models.BaseModel{ID: teamID},
		OrganizationID: orgID,
	}, nil)
	suite.mockOrgRepo.EXPECT().GetByID(orgID).Return(&models.Organization{
		BaseModel: models.BaseModel{ID: orgID},
		OwnerID:   uuid.New(),
	}, nil)
	suite.mockTeamRepo.EXPECT().GetMember(teamID, userID).Return(&models.TeamMember{
		TeamID: teamID,
		UserID: userID,
		Role:   models.TeamRoleManager,
	}, nil)

	canManage, err := suite.accessService.CanManageTeam(userID, teamID)

	assert.NoError(suite.T(), err)
	assert.True(suite.T(), canManage)
}

func (suite *AccessServiceTestSuite) TestCanManageTeam_PlainMemberDenied() {
	userID := uuid.New()
	orgID := uuid.New()
	teamID := uuid.New()

	suite.mockTeamRepo.EXPECT().GetByID(teamID).Return(&models.Team{
		BaseModel:      models.BaseModel{ID: teamID},
		OrganizationID: orgID,
	}, nil)
	suite.mockOrgRepo.EXPECT().GetByID(orgID).Return(&models.Organization{
		BaseModel: models.BaseModel{ID: orgID},
		OwnerID:   uuid.New(),
	}, nil)
	suite.mockTeamRepo.EXPECT().GetMember(teamID, userID).Return(&models.TeamMember{
		TeamID: teamID,
		UserID: userID,
		Role:   models.TeamRoleMember,
	}, nil)

	canManage, err := suite.accessService.CanManageTeam(userID, teamID)

	assert.NoError(suite.T(), err)
	assert.False(suite.T(), canManage)
}

func (suite *AccessServiceTestSuite) TestCanManageTeam_ManagerElsewhereDenied() {
	// A manager role in one team grants nothing in a sibling team.
	userID := uuid.New()
	orgID := uuid.New()
	teamID := uuid.New()

	suite.mockTeamRepo.EXPECT().GetByID(teamID).Return(&models.Team{
		BaseModel:      models.BaseModel{ID: teamID},
		OrganizationID: orgID,
	}, nil)
	suite.mockOrgRepo.EXPECT().GetByID(orgID).Return(&models.Organization{
		BaseModel: models.BaseModel{ID: orgID},
		OwnerID:   uuid.New(),
	}, nil)
	suite.mockTeamRepo.EXPECT().GetMember(teamID, userID).Return(nil, gorm.ErrRecordNotFound)

	canManage, err := suite.accessService.CanManageTeam(userID, teamID)

	assert.NoError(suite.T(), err)
	assert.False(suite.T(), canManage)
}

func (suite *AccessServiceTestSuite) TestCanManageTeam_UnknownTeam() {
	suite.mockTeamRepo.EXPECT().GetByID(gomock.Any()).Return(nil, gorm.ErrRecordNotFound)

	canManage, err := suite.accessService.CanManageTeam(uuid.New(), uuid.New())

	assert.NoError(suite.T(), err)
	assert.False(suite.T(), canManage)
}

func (suite *AccessServiceTestSuite) TestGetUserTeamRole_NotAMember() {
	suite.mockTeamRepo.EXPECT().GetMember(gomock.Any(), gomock.Any()).Return(nil, gorm.ErrRecordNotFound)

	role, err := suite.accessService.GetUserTeamRole(uuid.New(), uuid.New())

	assert.NoError(suite.T(), err)
	assert.Nil(suite.T(), role)
}

func (suite *AccessServiceTestSuite) TestHasPermission_GrantedThroughAnyTeam() {
	userID := uuid.New()
	orgID := uuid.New()

	suite.mockTeamRepo.EXPECT().GetByUserID(userID).Return([]models.Team{
		{
			BaseModel:      models.BaseModel{ID: uuid.New()},
			OrganizationID: uuid.New(), // other org, must not count
			Permissions:    []string{"billing:write"},
		},
		{
			BaseModel:      models.BaseModel{ID: uuid.New()},
			OrganizationID: orgID,
			Permissions:    []string{"reports:read", "billing:write"},
		},
	}, nil)

	granted, err := suite.accessService.HasPermission(userID, orgID, "billing:write")

	assert.NoError(suite.T(), err)
	assert.True(suite.T(), granted)
}

func (suite *AccessServiceTestSuite) TestHasPermission_ScopedToOrganization() {
	userID := uuid.New()
	orgID := uuid.New()

	suite.mockTeamRepo.EXPECT().GetByUserID(userID).Return([]models.Team{
		{
			BaseModel:      models.BaseModel{ID: uuid.New()},
			OrganizationID: uuid.New(),
			Permissions:    []string{"billing:write"},
		},
	}, nil)

	granted, err := suite.accessService.HasPermission(userID, orgID, "billing:write")

	assert.NoError(suite.T(), err)
	assert.False(suite.T(), granted)
}

func (suite *AccessServiceTestSuite) TestGetUserOrgRole_OwnerIsAdmin() {
	ownerID := uuid.New()
	orgID := uuid.New()

	suite.mockOrgRepo.EXPECT().GetByID(orgID).Return(&models.Organization{
		BaseModel: models.BaseModel{ID: orgID},
		OwnerID:   ownerID,
	}, nil)

	role, err := suite.accessService.GetUserOrgRole(ownerID, orgID)

	assert.NoError(suite.T(), err)
	assert.NotNil(suite.T(), role)
	assert.Equal(suite.T(), models.OrgRoleAdmin, *role)
}

func (suite *AccessServiceTestSuite) TestGetUserOrgRole_ManagerInAnyTeam() {
	userID := uuid.New()
	orgID := uuid.New()
	teamID := uuid.New()

	suite.mockOrgRepo.EXPECT().GetByID(orgID).Return(&models.Organization{
		BaseModel: models.BaseModel{ID: orgID},
		OwnerID:   uuid.New(),
	}, nil)
	suite.mockTeamRepo.EXPECT().GetByUserID(userID).Return([]models.Team{
		{BaseModel: models.BaseModel{ID: teamID}, OrganizationID: orgID},
	}, nil)
	suite.mockTeamRepo.EXPECT().GetMember(teamID, userID).Return(&models.TeamMember{
		TeamID: teamID,
		UserID: userID,
		Role:   models.TeamRoleManager,
	}, nil)

	role, err := suite.accessService.GetUserOrgRole(userID, orgID)

	assert.NoError(suite.T(), err)
	assert.NotNil(suite.T(), role)
	assert.Equal(suite.T(), models.OrgRoleManager, *role)
}

func (suite *AccessServiceTestSuite) TestGetUserOrgRole_MemberOnly() {
	userID := uuid.New()
	orgID := uuid.New()
	teamID := uuid.New()

	suite.mockOrgRepo.EXPECT().GetByID(orgID).Return(&models.Organization{
		BaseModel: models.BaseModel{ID: orgID},
		OwnerID:   uuid.New(),
	}, nil)
	suite.mockTeamRepo.EXPECT().GetByUserID(userID).Return([]models.Team{
		{BaseModel: models.BaseModel{ID: teamID}, OrganizationID: orgID},
	}, nil)
	suite.mockTeamRepo.EXPECT().GetMember(teamID, userID).Return(&models.TeamMember{
		TeamID: teamID,
		UserID: userID,
		Role:   models.TeamRoleMember,
	}, nil)

	role, err := suite.accessService.GetUserOrgRole(userID, orgID)

	assert.NoError(suite.T(), err)
	assert.NotNil(suite.T(), role)
	assert.Equal(suite.T(), models.OrgRoleMember, *role)
}

func (suite *AccessServiceTestSuite) TestGetUserOrgRole_Unrelated() {
	userID := uuid.New()
	orgID := uuid.New()

	suite.mockOrgRepo.EXPECT().GetByID(orgID).Return(&models.Organization{
		BaseModel: models.BaseModel{ID: orgID},
		OwnerID:   uuid.New(),
	}, nil)
	suite.mockTeamRepo.EXPECT().GetByUserID(userID).Return([]models.Team{}, nil)

	role, err := suite.accessService.GetUserOrgRole(userID, orgID)

	assert.NoError(suite.T(), err)
	assert.Nil(suite.T(), role)
}

func (suite *AccessServiceTestSuite) TestHasRolePermission_Hierarchy() {
	ownerID := uuid.New()
	orgID := uuid.New()

	suite.mockOrgRepo.EXPECT().GetByID(orgID).Return(&models.Organization{
		BaseModel: models.BaseModel{ID: orgID},
		OwnerID:   ownerID,
	}, nil).Times(3)

	for _, required := range []models.OrgRole{models.OrgRoleAdmin, models.OrgRoleManager, models.OrgRoleMember} {
		granted, err := suite.accessService.HasRolePermission(ownerID, orgID, required)
		assert.NoError(suite.T(), err)
		assert.True(suite.T(), granted, "owner should satisfy %s", required)
	}
}

func TestAccessServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AccessServiceTestSuite))
}
