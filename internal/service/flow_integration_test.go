//go:build integration
// +build integration

package service_test

import (
	"sync"
	"testing"
	"time"

	apperrors "dashboard-backend/internal/errors"
	"dashboard-backend/internal/repository"
	"dashboard-backend/internal/service"
	"dashboard-backend/internal/testutils"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
)

// InvitationFlowTestSuite drives the full invitation lifecycle through the
// real service and repository stack against Postgres.
type InvitationFlowTestSuite struct {
	suite.Suite
	baseTestSuite *testutils.BaseTestSuite

	userService       *service.UserService
	orgService        *service.OrganizationService
	teamService       *service.TeamService
	accessService     *service.AccessService
	invitationService *service.InvitationService
	invitationRepo    *repository.InvitationRepository
}

// SetupSuite runs before all tests in the suite
func (suite *InvitationFlowTestSuite) SetupSuite() {
	suite.baseTestSuite = testutils.SetupTestSuite(suite.T())
	db := suite.baseTestSuite.DB

	userRepo := repository.NewUserRepository(db)
	orgRepo := repository.NewOrganizationRepository(db)
	teamRepo := repository.NewTeamRepository(db)
	suite.invitationRepo = repository.NewInvitationRepository(db)

	validate := validator.New()
	suite.userService = service.NewUserService(userRepo, validate)
	suite.orgService = service.NewOrganizationService(orgRepo, validate)
	suite.teamService = service.NewTeamService(teamRepo, orgRepo, validate)
	suite.accessService = service.NewAccessService(orgRepo, teamRepo)
	suite.invitationService = service.NewInvitationService(
		suite.invitationRepo, teamRepo, userRepo, service.NewLogNotifier(), validate,
		suite.baseTestSuite.Config.InvitationTTL())
}

// TearDownSuite runs after all tests in the suite
func (suite *InvitationFlowTestSuite) TearDownSuite() {
	suite.baseTestSuite.TeardownTestSuite()
}

// SetupTest runs before each test
func (suite *InvitationFlowTestSuite) SetupTest() {
	suite.baseTestSuite.SetupTest()
}

// TearDownTest runs after each test
func (suite *InvitationFlowTestSuite) TearDownTest() {
	suite.baseTestSuite.TearDownTest()
}

func (suite *InvitationFlowTestSuite) register(name, email string) *service.UserResponse {
	user, err := suite.userService.Register(&service.RegisterUserRequest{
		Name:     name,
		Email:    email,
		Password: "correct horse battery",
	})
	suite.Require().NoError(err)
	return user
}

// setupOrgAndTeam registers an owner and creates an organization with one team
func (suite *InvitationFlowTestSuite) setupOrgAndTeam() (*service.UserResponse, *service.OrganizationResponse, *service.TeamResponse) {
	owner := suite.register("Dana", "dana@example.com")

	org, err := suite.orgService.Create(owner.ID, &service.CreateOrganizationRequest{
		Name: "Acme Corp",
	})
	suite.Require().NoError(err)

	team, err := suite.teamService.Create(owner.ID, &service.CreateTeamRequest{
		OrganizationID: org.ID,
		Name:           "Platform",
	})
	suite.Require().NoError(err)

	return owner, org, team
}

func (suite *InvitationFlowTestSuite) invite(email string, team *service.TeamResponse, org *service.OrganizationResponse, invitedBy uuid.UUID, role string) *service.InvitationResponse {
	inv, err := suite.invitationService.Create(&service.CreateInvitationRequest{
		Email:          email,
		TeamID:         team.ID,
		OrganizationID: org.ID,
		Role:           role,
		InvitedBy:      invitedBy,
	})
	suite.Require().NoError(err)
	return inv
}

func (suite *InvitationFlowTestSuite) TestAcceptFlow() {
	owner, org, team := suite.setupOrgAndTeam()
	inv := suite.invite("bob@example.com", team, org, owner.ID, "")
	bob := suite.register("Bob", "bob@example.com")

	// Bob sees his pending invitation
	pending, err := suite.invitationService.GetByEmail("Bob@Example.com")
	suite.NoError(err)
	suite.Require().Len(pending, 1)
	suite.Equal(inv.Token, pending[0].Token)

	valid, err := suite.invitationService.IsValid(inv.Token)
	suite.NoError(err)
	suite.True(valid)

	teamResp, err := suite.invitationService.AcceptInvitation(inv.Token, bob.ID)
	suite.NoError(err)
	suite.Equal(1, teamResp.MembersCount)
	suite.Require().Len(teamResp.Members, 1)
	suite.Equal(bob.ID, teamResp.Members[0].UserID)
	suite.Equal("member", teamResp.Members[0].Role)
	suite.Equal(owner.ID, teamResp.Members[0].AddedBy)

	resolved, err := suite.invitationService.GetByToken(inv.Token)
	suite.NoError(err)
	suite.Equal("accepted", resolved.Status)

	// A second accept loses the guarded transition
	_, err = suite.invitationService.AcceptInvitation(inv.Token, bob.ID)
	suite.ErrorIs(err, apperrors.ErrInvitationNotPending)

	// Derived access after joining
	role, err := suite.accessService.GetUserOrgRole(bob.ID, org.ID)
	suite.NoError(err)
	suite.Require().NotNil(role)
	suite.Equal("member", string(*role))

	canManage, err := suite.accessService.CanManageTeam(bob.ID, team.ID)
	suite.NoError(err)
	suite.False(canManage)

	// Owner manages without ever being a member
	canManage, err = suite.accessService.CanManageTeam(owner.ID, team.ID)
	suite.NoError(err)
	suite.True(canManage)
}

// TestConcurrentAcceptSingleWinner races several accepts of one token. A
// loser's membership insert can slip past the serial pre-check and fail on
// the unique index instead; it must surface as a tolerated duplicate key, so
// the loser falls through to the guarded status transition and reports the
// invitation as no longer pending rather than an internal error.
func (suite *InvitationFlowTestSuite) TestConcurrentAcceptSingleWinner() {
	owner, org, team := suite.setupOrgAndTeam()
	inv := suite.invite("bob@example.com", team, org, owner.ID, "")
	bob := suite.register("Bob", "bob@example.com")

	const racers = 4
	results := make([]error, racers)
	var wg sync.WaitGroup
	wg.Add(racers)
	for i := 0; i < racers; i++ {
		go func(n int) {
			defer wg.Done()
			_, results[n] = suite.invitationService.AcceptInvitation(inv.Token, bob.ID)
		}(i)
	}
	wg.Wait()

	winners := 0
	for _, err := range results {
		if err == nil {
			winners++
		} else {
			suite.ErrorIs(err, apperrors.ErrInvitationNotPending)
		}
	}
	suite.Equal(1, winners)

	teamResp, err := suite.teamService.GetByID(team.ID)
	suite.NoError(err)
	suite.Equal(1, teamResp.MembersCount)

	resolved, err := suite.invitationService.GetByToken(inv.Token)
	suite.NoError(err)
	suite.Equal("accepted", resolved.Status)
}

func (suite *InvitationFlowTestSuite) TestRejectFlow() {
	owner, org, team := suite.setupOrgAndTeam()
	inv := suite.invite("bob@example.com", team, org, owner.ID, "manager")
	bob := suite.register("Bob", "bob@example.com")

	suite.NoError(suite.invitationService.RejectInvitation(inv.Token, bob.ID))

	resolved, err := suite.invitationService.GetByToken(inv.Token)
	suite.NoError(err)
	suite.Equal("rejected", resolved.Status)

	// Rejection leaves no membership behind
	teamResp, err := suite.teamService.GetByID(team.ID)
	suite.NoError(err)
	suite.Equal(0, teamResp.MembersCount)

	_, err = suite.invitationService.AcceptInvitation(inv.Token, bob.ID)
	suite.ErrorIs(err, apperrors.ErrInvitationNotPending)
}

func (suite *InvitationFlowTestSuite) TestEmailMismatchLeavesInvitationPending() {
	owner, org, team := suite.setupOrgAndTeam()
	inv := suite.invite("bob@example.com", team, org, owner.ID, "")
	carol := suite.register("Carol", "carol@example.com")

	_, err := suite.invitationService.AcceptInvitation(inv.Token, carol.ID)
	suite.ErrorIs(err, apperrors.ErrInvitationEmailMismatch)

	resolved, err := suite.invitationService.GetByToken(inv.Token)
	suite.NoError(err)
	suite.Equal("pending", resolved.Status)

	teamResp, err := suite.teamService.GetByID(team.ID)
	suite.NoError(err)
	suite.Equal(0, teamResp.MembersCount)
}

func (suite *InvitationFlowTestSuite) TestExpiryFlow() {
	owner, org, team := suite.setupOrgAndTeam()
	bob := suite.register("Bob", "bob@example.com")

	// A service configured with an elapsed TTL issues already-expired invitations
	expiredIssuer := service.NewInvitationService(
		suite.invitationRepo,
		repository.NewTeamRepository(suite.baseTestSuite.DB),
		repository.NewUserRepository(suite.baseTestSuite.DB),
		service.NewLogNotifier(),
		validator.New(),
		-time.Hour)
	inv, err := expiredIssuer.Create(&service.CreateInvitationRequest{
		Email:          "bob@example.com",
		TeamID:         team.ID,
		OrganizationID: org.ID,
		InvitedBy:      owner.ID,
	})
	suite.Require().NoError(err)

	valid, err := suite.invitationService.IsValid(inv.Token)
	suite.NoError(err)
	suite.False(valid)

	resolved, err := suite.invitationService.GetByToken(inv.Token)
	suite.NoError(err)
	suite.Equal("expired", resolved.Status)

	_, err = suite.invitationService.AcceptInvitation(inv.Token, bob.ID)
	suite.ErrorIs(err, apperrors.ErrInvitationNotPending)

	// The bulk sweep finds nothing left to do
	count, err := suite.invitationService.ExpireOld()
	suite.NoError(err)
	suite.Equal(int64(0), count)
}

func (suite *InvitationFlowTestSuite) TestManagerPromotionAndDelegatedInvite() {
	owner, org, team := suite.setupOrgAndTeam()
	inv := suite.invite("bob@example.com", team, org, owner.ID, "")
	bob := suite.register("Bob", "bob@example.com")

	_, err := suite.invitationService.AcceptInvitation(inv.Token, bob.ID)
	suite.Require().NoError(err)

	_, err = suite.teamService.UpdateMemberRole(team.ID, bob.ID, "manager")
	suite.Require().NoError(err)

	canManage, err := suite.accessService.CanManageTeam(bob.ID, team.ID)
	suite.NoError(err)
	suite.True(canManage)

	role, err := suite.accessService.GetUserOrgRole(bob.ID, org.ID)
	suite.NoError(err)
	suite.Require().NotNil(role)
	suite.Equal("manager", string(*role))

	// Bob, now a manager, invites Carol
	carolInv := suite.invite("carol@example.com", team, org, bob.ID, "")
	carol := suite.register("Carol", "carol@example.com")

	teamResp, err := suite.invitationService.AcceptInvitation(carolInv.Token, carol.ID)
	suite.NoError(err)
	suite.Equal(2, teamResp.MembersCount)

	// Carol was admitted by the inviter on record
	for _, m := range teamResp.Members {
		if m.UserID == carol.ID {
			suite.Equal(bob.ID, m.AddedBy)
		}
	}
}

func TestInvitationFlowTestSuite(t *testing.T) {
	suite.Run(t, new(InvitationFlowTestSuite))
}
