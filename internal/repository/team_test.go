package repository

import (
	"sync"
	"testing"
	"time"

	"dashboard-backend/internal/database/models"
	"dashboard-backend/internal/testutils"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"
)

// TeamRepositoryTestSuite tests the TeamRepository
type TeamRepositoryTestSuite struct {
	suite.Suite
	baseTestSuite *testutils.BaseTestSuite
	repo          *TeamRepository
	factories     *testutils.FactorySet

	owner *models.User
	org   *models.Organization
}

// SetupSuite runs before all tests in the suite
func (suite *TeamRepositoryTestSuite) SetupSuite() {
	suite.baseTestSuite = testutils.SetupTestSuite(suite.T())
	suite.repo = NewTeamRepository(suite.baseTestSuite.DB)
	suite.factories = testutils.NewFactorySet()
}

// TearDownSuite runs after all tests in the suite
func (suite *TeamRepositoryTestSuite) TearDownSuite() {
	suite.baseTestSuite.TeardownTestSuite()
}

// SetupTest runs before each test
func (suite *TeamRepositoryTestSuite) SetupTest() {
	suite.baseTestSuite.SetupTest()

	suite.owner = suite.factories.Users.Create()
	suite.NoError(suite.baseTestSuite.DB.Create(suite.owner).Error)

	suite.org = suite.factories.Organizations.Create(suite.owner.ID)
	suite.NoError(suite.baseTestSuite.DB.Create(suite.org).Error)
}

// TearDownTest runs after each test
func (suite *TeamRepositoryTestSuite) TearDownTest() {
	suite.baseTestSuite.TearDownTest()
}

func (suite *TeamRepositoryTestSuite) createTeam() *models.Team {
	team := suite.factories.Teams.Create(suite.org.ID, suite.owner.ID)
	suite.NoError(suite.repo.Create(team))
	return team
}

func (suite *TeamRepositoryTestSuite) createUser() *models.User {
	user := suite.factories.Users.Create()
	suite.NoError(suite.baseTestSuite.DB.Create(user).Error)
	return user
}

func (suite *TeamRepositoryTestSuite) memberRowCount(teamID uuid.UUID) int64 {
	var count int64
	suite.NoError(suite.baseTestSuite.DB.Model(&models.TeamMember{}).
		Where("team_id = ?", teamID).Count(&count).Error)
	return count
}

func (suite *TeamRepositoryTestSuite) TestAddMember_IncrementsCount() {
	team := suite.createTeam()
	alice := suite.createUser()
	bob := suite.createUser()

	suite.NoError(suite.repo.AddMember(suite.factories.TeamMembers.Create(team.ID, alice.ID, suite.owner.ID)))
	suite.NoError(suite.repo.AddMember(suite.factories.TeamMembers.WithRole(team.ID, bob.ID, suite.owner.ID, models.TeamRoleManager)))

	found, err := suite.repo.GetByID(team.ID)
	suite.NoError(err)
	suite.Equal(2, found.MembersCount)
	suite.Equal(int64(2), suite.memberRowCount(team.ID))
}

func (suite *TeamRepositoryTestSuite) TestAddMember_DuplicatePairRejected() {
	team := suite.createTeam()
	alice := suite.createUser()

	suite.NoError(suite.repo.AddMember(suite.factories.TeamMembers.Create(team.ID, alice.ID, suite.owner.ID)))

	err := suite.repo.AddMember(suite.factories.TeamMembers.Create(team.ID, alice.ID, suite.owner.ID))
	suite.ErrorIs(err, gorm.ErrDuplicatedKey)

	// The rejected insert must not have touched the count
	found, err := suite.repo.GetByID(team.ID)
	suite.NoError(err)
	suite.Equal(1, found.MembersCount)
	suite.Equal(int64(1), suite.memberRowCount(team.ID))
}

// TestAddMember_ConcurrentSamePair races several inserts for the same
// (team, user) pair. The unique index lets exactly one through, every loser
// reports a duplicated key, and the counter reflects the single surviving
// row. Losers here can pass the in-transaction pre-check before the winner
// commits, so the error identity depends on driver errors being translated.
func (suite *TeamRepositoryTestSuite) TestAddMember_ConcurrentSamePair() {
	team := suite.createTeam()
	alice := suite.createUser()

	const racers = 6
	results := make([]error, racers)
	var wg sync.WaitGroup
	wg.Add(racers)
	for i := 0; i < racers; i++ {
		go func(n int) {
			defer wg.Done()
			results[n] = suite.repo.AddMember(suite.factories.TeamMembers.Create(team.ID, alice.ID, suite.owner.ID))
		}(i)
	}
	wg.Wait()

	winners := 0
	for _, err := range results {
		if err == nil {
			winners++
		} else {
			suite.ErrorIs(err, gorm.ErrDuplicatedKey)
		}
	}
	suite.Equal(1, winners)

	found, err := suite.repo.GetByID(team.ID)
	suite.NoError(err)
	suite.Equal(1, found.MembersCount)
	suite.Equal(int64(1), suite.memberRowCount(team.ID))
}

func (suite *TeamRepositoryTestSuite) TestRemoveMember_DecrementsCount() {
	team := suite.createTeam()
	alice := suite.createUser()
	suite.NoError(suite.repo.AddMember(suite.factories.TeamMembers.Create(team.ID, alice.ID, suite.owner.ID)))

	suite.NoError(suite.repo.RemoveMember(team.ID, alice.ID))

	found, err := suite.repo.GetByID(team.ID)
	suite.NoError(err)
	suite.Equal(0, found.MembersCount)
	suite.Equal(int64(0), suite.memberRowCount(team.ID))
}

func (suite *TeamRepositoryTestSuite) TestRemoveMember_NotAMember() {
	team := suite.createTeam()

	err := suite.repo.RemoveMember(team.ID, uuid.New())

	suite.ErrorIs(err, gorm.ErrRecordNotFound)

	found, err := suite.repo.GetByID(team.ID)
	suite.NoError(err)
	suite.Equal(0, found.MembersCount)
}

func (suite *TeamRepositoryTestSuite) TestUpdateMemberRole() {
	team := suite.createTeam()
	alice := suite.createUser()
	suite.NoError(suite.repo.AddMember(suite.factories.TeamMembers.Create(team.ID, alice.ID, suite.owner.ID)))

	suite.NoError(suite.repo.UpdateMemberRole(team.ID, alice.ID, models.TeamRoleManager))

	member, err := suite.repo.GetMember(team.ID, alice.ID)
	suite.NoError(err)
	suite.Equal(models.TeamRoleManager, member.Role)
}

func (suite *TeamRepositoryTestSuite) TestUpdateMemberRole_NotAMember() {
	team := suite.createTeam()

	err := suite.repo.UpdateMemberRole(team.ID, uuid.New(), models.TeamRoleManager)

	suite.ErrorIs(err, gorm.ErrRecordNotFound)
}

func (suite *TeamRepositoryTestSuite) TestAddPermission_SetSemantics() {
	team := suite.createTeam()

	suite.NoError(suite.repo.AddPermission(team.ID, "reports:read"))
	suite.NoError(suite.repo.AddPermission(team.ID, "reports:read"))
	suite.NoError(suite.repo.AddPermission(team.ID, "billing:write"))

	found, err := suite.repo.GetByID(team.ID)
	suite.NoError(err)
	suite.ElementsMatch([]string{"reports:read", "billing:write"}, []string(found.Permissions))
}

func (suite *TeamRepositoryTestSuite) TestRemovePermission() {
	team := suite.createTeam()
	suite.NoError(suite.repo.AddPermission(team.ID, "reports:read"))
	suite.NoError(suite.repo.AddPermission(team.ID, "billing:write"))

	suite.NoError(suite.repo.RemovePermission(team.ID, "reports:read"))
	// Removing an absent permission is a no-op
	suite.NoError(suite.repo.RemovePermission(team.ID, "reports:read"))

	found, err := suite.repo.GetByID(team.ID)
	suite.NoError(err)
	suite.ElementsMatch([]string{"billing:write"}, []string(found.Permissions))
}

func (suite *TeamRepositoryTestSuite) TestGetWithMembers_OrdersByAddedAt() {
	team := suite.createTeam()
	alice := suite.createUser()
	bob := suite.createUser()

	first := suite.factories.TeamMembers.Create(team.ID, alice.ID, suite.owner.ID)
	first.AddedAt = time.Now().Add(-time.Hour)
	suite.NoError(suite.repo.AddMember(first))

	second := suite.factories.TeamMembers.Create(team.ID, bob.ID, suite.owner.ID)
	suite.NoError(suite.repo.AddMember(second))

	found, err := suite.repo.GetWithMembers(team.ID)
	suite.NoError(err)
	suite.Require().Len(found.Members, 2)
	suite.Equal(alice.ID, found.Members[0].UserID)
	suite.Equal(bob.ID, found.Members[1].UserID)
	suite.Require().NotNil(found.Members[0].User)
	suite.Equal(alice.Email, found.Members[0].User.Email)
	suite.Require().NotNil(found.Organization)
	suite.Equal(suite.org.ID, found.Organization.ID)
}

func (suite *TeamRepositoryTestSuite) TestGetByOrganizationID_Paginated() {
	for i := 0; i < 3; i++ {
		team := suite.factories.Teams.Create(suite.org.ID, suite.owner.ID)
		team.CreatedAt = time.Now().Add(time.Duration(-i) * time.Hour)
		suite.NoError(suite.repo.Create(team))
	}

	// A team in another organization must not leak in
	otherOrg := suite.factories.Organizations.Create(suite.owner.ID)
	suite.NoError(suite.baseTestSuite.DB.Create(otherOrg).Error)
	other := suite.factories.Teams.Create(otherOrg.ID, suite.owner.ID)
	suite.NoError(suite.repo.Create(other))

	teams, total, err := suite.repo.GetByOrganizationID(suite.org.ID, 2, 0)
	suite.NoError(err)
	suite.Equal(int64(3), total)
	suite.Require().Len(teams, 2)
	suite.True(teams[0].CreatedAt.After(teams[1].CreatedAt))

	teams, total, err = suite.repo.GetByOrganizationID(suite.org.ID, 2, 2)
	suite.NoError(err)
	suite.Equal(int64(3), total)
	suite.Len(teams, 1)
}

func (suite *TeamRepositoryTestSuite) TestGetByUserID() {
	mine := suite.createTeam()
	suite.createTeam()
	alice := suite.createUser()
	suite.NoError(suite.repo.AddMember(suite.factories.TeamMembers.Create(mine.ID, alice.ID, suite.owner.ID)))

	teams, err := suite.repo.GetByUserID(alice.ID)

	suite.NoError(err)
	suite.Require().Len(teams, 1)
	suite.Equal(mine.ID, teams[0].ID)
}

func (suite *TeamRepositoryTestSuite) TestDelete_RemovesMemberRows() {
	team := suite.createTeam()
	alice := suite.createUser()
	suite.NoError(suite.repo.AddMember(suite.factories.TeamMembers.Create(team.ID, alice.ID, suite.owner.ID)))

	suite.NoError(suite.repo.Delete(team.ID))

	_, err := suite.repo.GetByID(team.ID)
	suite.ErrorIs(err, gorm.ErrRecordNotFound)
	suite.Equal(int64(0), suite.memberRowCount(team.ID))
}

func TestTeamRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(TeamRepositoryTestSuite))
}
