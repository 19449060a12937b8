package repository

import (
	"testing"

	"dashboard-backend/internal/testutils"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"
)

// UserRepositoryTestSuite tests the UserRepository
type UserRepositoryTestSuite struct {
	suite.Suite
	baseTestSuite *testutils.BaseTestSuite
	repo          *UserRepository
	factories     *testutils.FactorySet
}

// SetupSuite runs before all tests in the suite
func (suite *UserRepositoryTestSuite) SetupSuite() {
	suite.baseTestSuite = testutils.SetupTestSuite(suite.T())
	suite.repo = NewUserRepository(suite.baseTestSuite.DB)
	suite.factories = testutils.NewFactorySet()
}

// TearDownSuite runs after all tests in the suite
func (suite *UserRepositoryTestSuite) TearDownSuite() {
	suite.baseTestSuite.TeardownTestSuite()
}

// SetupTest runs before each test
func (suite *UserRepositoryTestSuite) SetupTest() {
	suite.baseTestSuite.SetupTest()
}

// TearDownTest runs after each test
func (suite *UserRepositoryTestSuite) TearDownTest() {
	suite.baseTestSuite.TearDownTest()
}

func (suite *UserRepositoryTestSuite) TestCreateAndGetByID() {
	user := suite.factories.Users.Create()

	suite.NoError(suite.repo.Create(user))

	found, err := suite.repo.GetByID(user.ID)
	suite.NoError(err)
	suite.Equal(user.Email, found.Email)
	suite.Equal(user.Name, found.Name)
}

func (suite *UserRepositoryTestSuite) TestCreate_DuplicateEmailRejected() {
	user := suite.factories.Users.WithEmail("alice@example.com")
	suite.NoError(suite.repo.Create(user))

	dup := suite.factories.Users.WithEmail("alice@example.com")
	suite.ErrorIs(suite.repo.Create(dup), gorm.ErrDuplicatedKey)
}

func (suite *UserRepositoryTestSuite) TestGetByEmail() {
	user := suite.factories.Users.WithEmail("alice@example.com")
	suite.NoError(suite.repo.Create(user))

	found, err := suite.repo.GetByEmail("alice@example.com")
	suite.NoError(err)
	suite.Equal(user.ID, found.ID)

	_, err = suite.repo.GetByEmail("nobody@example.com")
	suite.ErrorIs(err, gorm.ErrRecordNotFound)
}

func (suite *UserRepositoryTestSuite) TestGetByID_NotFound() {
	_, err := suite.repo.GetByID(uuid.New())

	suite.ErrorIs(err, gorm.ErrRecordNotFound)
}

func (suite *UserRepositoryTestSuite) TestUpdate() {
	user := suite.factories.Users.Create()
	suite.NoError(suite.repo.Create(user))

	user.Name = "Renamed"
	user.AvatarURL = "https://cdn.example.com/a.png"
	suite.NoError(suite.repo.Update(user))

	found, err := suite.repo.GetByID(user.ID)
	suite.NoError(err)
	suite.Equal("Renamed", found.Name)
	suite.Equal("https://cdn.example.com/a.png", found.AvatarURL)
}

func (suite *UserRepositoryTestSuite) TestDelete() {
	user := suite.factories.Users.Create()
	suite.NoError(suite.repo.Create(user))

	suite.NoError(suite.repo.Delete(user.ID))

	_, err := suite.repo.GetByID(user.ID)
	suite.ErrorIs(err, gorm.ErrRecordNotFound)
}

func TestUserRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(UserRepositoryTestSuite))
}
