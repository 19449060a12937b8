package repository

import (
	"sync"
	"testing"
	"time"

	"dashboard-backend/internal/database/models"
	"dashboard-backend/internal/testutils"

	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"
)

// InvitationRepositoryTestSuite tests the InvitationRepository
type InvitationRepositoryTestSuite struct {
	suite.Suite
	baseTestSuite *testutils.BaseTestSuite
	repo          *InvitationRepository
	factories     *testutils.FactorySet

	inviter *models.User
	org     *models.Organization
	team    *models.Team
}

// SetupSuite runs before all tests in the suite
func (suite *InvitationRepositoryTestSuite) SetupSuite() {
	suite.baseTestSuite = testutils.SetupTestSuite(suite.T())
	suite.repo = NewInvitationRepository(suite.baseTestSuite.DB)
	suite.factories = testutils.NewFactorySet()
}

// TearDownSuite runs after all tests in the suite
func (suite *InvitationRepositoryTestSuite) TearDownSuite() {
	suite.baseTestSuite.TeardownTestSuite()
}

// SetupTest runs before each test and seeds the inviter, org and team every
// invitation hangs off
func (suite *InvitationRepositoryTestSuite) SetupTest() {
	suite.baseTestSuite.SetupTest()

	suite.inviter = suite.factories.Users.Create()
	suite.NoError(suite.baseTestSuite.DB.Create(suite.inviter).Error)

	suite.org = suite.factories.Organizations.Create(suite.inviter.ID)
	suite.NoError(suite.baseTestSuite.DB.Create(suite.org).Error)

	suite.team = suite.factories.Teams.Create(suite.org.ID, suite.inviter.ID)
	suite.NoError(suite.baseTestSuite.DB.Create(suite.team).Error)
}

// TearDownTest runs after each test
func (suite *InvitationRepositoryTestSuite) TearDownTest() {
	suite.baseTestSuite.TearDownTest()
}

func (suite *InvitationRepositoryTestSuite) createPending(email string) *models.Invitation {
	inv := suite.factories.Invitations.Create(email, suite.team.ID, suite.org.ID, suite.inviter.ID)
	suite.NoError(suite.repo.Create(inv))
	return inv
}

func (suite *InvitationRepositoryTestSuite) TestGetByToken_PreloadsRelations() {
	inv := suite.createPending("bob@example.com")

	found, err := suite.repo.GetByToken(inv.Token)

	suite.NoError(err)
	suite.Equal(inv.ID, found.ID)
	suite.Equal(models.InvitationStatusPending, found.Status)
	suite.Require().NotNil(found.Team)
	suite.Equal(suite.team.Name, found.Team.Name)
	suite.Require().NotNil(found.Organization)
	suite.Equal(suite.org.ID, found.Organization.ID)
	suite.Require().NotNil(found.InvitedBy)
	suite.Equal(suite.inviter.Email, found.InvitedBy.Email)
}

func (suite *InvitationRepositoryTestSuite) TestGetByToken_NotFound() {
	found, err := suite.repo.GetByToken("0000000000000000000000000000000000000000000000000000000000000000")

	suite.Nil(found)
	suite.ErrorIs(err, gorm.ErrRecordNotFound)
}

func (suite *InvitationRepositoryTestSuite) TestCreate_TokenMustBeUnique() {
	inv := suite.createPending("bob@example.com")

	dup := suite.factories.Invitations.Create("carol@example.com", suite.team.ID, suite.org.ID, suite.inviter.ID)
	dup.Token = inv.Token

	suite.ErrorIs(suite.repo.Create(dup), gorm.ErrDuplicatedKey)
}

func (suite *InvitationRepositoryTestSuite) TestTransition_PendingToAccepted() {
	inv := suite.createPending("bob@example.com")

	updated, err := suite.repo.Transition(inv.Token, models.InvitationStatusAccepted)

	suite.NoError(err)
	suite.Equal(models.InvitationStatusAccepted, updated.Status)

	// Resolved invitations cannot transition again
	_, err = suite.repo.Transition(inv.Token, models.InvitationStatusRejected)
	suite.ErrorIs(err, gorm.ErrRecordNotFound)

	found, err := suite.repo.GetByToken(inv.Token)
	suite.NoError(err)
	suite.Equal(models.InvitationStatusAccepted, found.Status)
}

func (suite *InvitationRepositoryTestSuite) TestTransition_UnknownToken() {
	_, err := suite.repo.Transition("ffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffff", models.InvitationStatusAccepted)

	suite.ErrorIs(err, gorm.ErrRecordNotFound)
}

// TestTransition_ConcurrentSingleWinner races accept and reject on the same
// pending token and verifies exactly one transition wins.
func (suite *InvitationRepositoryTestSuite) TestTransition_ConcurrentSingleWinner() {
	inv := suite.createPending("bob@example.com")

	const racers = 8
	results := make([]error, racers)
	var wg sync.WaitGroup
	wg.Add(racers)
	for i := 0; i < racers; i++ {
		go func(n int) {
			defer wg.Done()
			to := models.InvitationStatusAccepted
			if n%2 == 1 {
				to = models.InvitationStatusRejected
			}
			_, results[n] = suite.repo.Transition(inv.Token, to)
		}(i)
	}
	wg.Wait()

	winners := 0
	for _, err := range results {
		if err == nil {
			winners++
		} else {
			suite.ErrorIs(err, gorm.ErrRecordNotFound)
		}
	}
	suite.Equal(1, winners)

	found, err := suite.repo.GetByToken(inv.Token)
	suite.NoError(err)
	suite.NotEqual(models.InvitationStatusPending, found.Status)
}

func (suite *InvitationRepositoryTestSuite) TestMarkExpired_OnlyTouchesPending() {
	pending := suite.createPending("bob@example.com")
	accepted := suite.createPending("carol@example.com")
	_, err := suite.repo.Transition(accepted.Token, models.InvitationStatusAccepted)
	suite.NoError(err)

	suite.NoError(suite.repo.MarkExpired(pending.ID))
	suite.NoError(suite.repo.MarkExpired(accepted.ID))

	found, err := suite.repo.GetByToken(pending.Token)
	suite.NoError(err)
	suite.Equal(models.InvitationStatusExpired, found.Status)

	found, err = suite.repo.GetByToken(accepted.Token)
	suite.NoError(err)
	suite.Equal(models.InvitationStatusAccepted, found.Status)
}

func (suite *InvitationRepositoryTestSuite) TestExpireOld_BulkAndIdempotent() {
	stale1 := suite.factories.Invitations.Expired("bob@example.com", suite.team.ID, suite.org.ID, suite.inviter.ID)
	stale2 := suite.factories.Invitations.Expired("carol@example.com", suite.team.ID, suite.org.ID, suite.inviter.ID)
	fresh := suite.createPending("dave@example.com")
	suite.NoError(suite.repo.Create(stale1))
	suite.NoError(suite.repo.Create(stale2))

	// A stale but already-resolved invitation must not be touched
	resolved := suite.factories.Invitations.Expired("erin@example.com", suite.team.ID, suite.org.ID, suite.inviter.ID)
	resolved.Status = models.InvitationStatusRejected
	suite.NoError(suite.repo.Create(resolved))

	count, err := suite.repo.ExpireOld()
	suite.NoError(err)
	suite.Equal(int64(2), count)

	found, err := suite.repo.GetByToken(fresh.Token)
	suite.NoError(err)
	suite.Equal(models.InvitationStatusPending, found.Status)

	found, err = suite.repo.GetByToken(resolved.Token)
	suite.NoError(err)
	suite.Equal(models.InvitationStatusRejected, found.Status)

	count, err = suite.repo.ExpireOld()
	suite.NoError(err)
	suite.Equal(int64(0), count)
}

func (suite *InvitationRepositoryTestSuite) TestGetPendingByEmail_NewestFirstPendingOnly() {
	older := suite.factories.Invitations.Create("bob@example.com", suite.team.ID, suite.org.ID, suite.inviter.ID)
	older.CreatedAt = time.Now().Add(-2 * time.Hour)
	suite.NoError(suite.repo.Create(older))

	newer := suite.factories.Invitations.Create("bob@example.com", suite.team.ID, suite.org.ID, suite.inviter.ID)
	newer.CreatedAt = time.Now().Add(-time.Hour)
	suite.NoError(suite.repo.Create(newer))

	rejected := suite.createPending("bob@example.com")
	_, err := suite.repo.Transition(rejected.Token, models.InvitationStatusRejected)
	suite.NoError(err)

	suite.createPending("someone-else@example.com")

	invitations, err := suite.repo.GetPendingByEmail("bob@example.com")

	suite.NoError(err)
	suite.Require().Len(invitations, 2)
	suite.Equal(newer.ID, invitations[0].ID)
	suite.Equal(older.ID, invitations[1].ID)
}

func (suite *InvitationRepositoryTestSuite) TestGetByTeamID_AllStatuses() {
	accepted := suite.createPending("bob@example.com")
	_, err := suite.repo.Transition(accepted.Token, models.InvitationStatusAccepted)
	suite.NoError(err)
	suite.createPending("carol@example.com")

	otherTeam := suite.factories.Teams.Create(suite.org.ID, suite.inviter.ID)
	suite.NoError(suite.baseTestSuite.DB.Create(otherTeam).Error)
	other := suite.factories.Invitations.Create("dave@example.com", otherTeam.ID, suite.org.ID, suite.inviter.ID)
	suite.NoError(suite.repo.Create(other))

	invitations, err := suite.repo.GetByTeamID(suite.team.ID)

	suite.NoError(err)
	suite.Len(invitations, 2)
	for _, inv := range invitations {
		suite.Equal(suite.team.ID, inv.TeamID)
	}
}

func (suite *InvitationRepositoryTestSuite) TestDelete() {
	inv := suite.createPending("bob@example.com")

	suite.NoError(suite.repo.Delete(inv.ID))

	_, err := suite.repo.GetByToken(inv.Token)
	suite.ErrorIs(err, gorm.ErrRecordNotFound)
}

func TestInvitationRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(InvitationRepositoryTestSuite))
}
