package mongodb_test

import (
	"context"
	"testing"
	"time"

	"gomarket/internal/auth/adapter/persistence/mongodb"
	"gomarket/internal/auth/testutil"
	apperrors "gomarket/internal/shared/errors"
	"gomarket/internal/shared/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoAccountRepositoryTestSuite struct {
	suite.Suite
	client   *mongo.Client
	database *mongo.Database
	repo     *mongodb.MongoAccountRepository
	fixtures *testutil.TestData
}

func (suite *MongoAccountRepositoryTestSuite) SetupSuite() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI("mongodb://localhost:27017"))
	if err != nil {
		suite.T().Skip("MongoDB not available for testing")
		return
	}
	if err := client.Ping(ctx, nil); err != nil {
		suite.T().Skip("MongoDB not available for testing")
		return
	}

	suite.client = client
	suite.database = client.Database("gomarket_account_test_db")
	suite.fixtures = testutil.NewTestData()

	repo, err := mongodb.NewMongoAccountRepository(suite.database, logger.NewLogger())
	require.NoError(suite.T(), err)
	suite.repo = repo
}

func (suite *MongoAccountRepositoryTestSuite) TearDownSuite() {
	if suite.client != nil {
		suite.database.Drop(context.Background())
		suite.client.Disconnect(context.Background())
	}
}

func (suite *MongoAccountRepositoryTestSuite) SetupTest() {
	if suite.database != nil {
		suite.database.Collection("users").Drop(context.Background())
	}
}

func (suite *MongoAccountRepositoryTestSuite) TestCreateAndGetUser() {
	ctx := context.Background()
	user := suite.fixtures.Users.ValidUser()

	require.NoError(suite.T(), suite.repo.CreateUser(ctx, user))

	byEmail, err := suite.repo.GetUserByEmail(ctx, user.Email)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), user.ID, byEmail.ID)
	assert.Equal(suite.T(), user.Role, byEmail.Role)

	byID, err := suite.repo.GetUserByID(ctx, user.ID)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), user.Email, byID.Email)
}

func (suite *MongoAccountRepositoryTestSuite) TestCreateUser_DuplicateEmail() {
	ctx := context.Background()
	user := suite.fixtures.Users.ValidUser()

	require.NoError(suite.T(), suite.repo.CreateUser(ctx, user))

	dup := suite.fixtures.Users.UserWithEmail(user.Email)
	dup.ID = "another-id"
	err := suite.repo.CreateUser(ctx, dup)
	require.Error(suite.T(), err)
	assert.True(suite.T(), apperrors.IsConflict(err))
}

func (suite *MongoAccountRepositoryTestSuite) TestGetUser_Missing() {
	ctx := context.Background()

	_, err := suite.repo.GetUserByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(suite.T(), err, apperrors.ErrUserNotFound)

	_, err = suite.repo.GetUserByID(ctx, "no-such-id")
	assert.ErrorIs(suite.T(), err, apperrors.ErrUserNotFound)
}

func (suite *MongoAccountRepositoryTestSuite) TestUpdatePassword() {
	ctx := context.Background()
	user := suite.fixtures.Users.ValidUser()
	require.NoError(suite.T(), suite.repo.CreateUser(ctx, user))

	require.NoError(suite.T(), suite.repo.UpdatePassword(ctx, user.ID, "new-hash"))

	updated, err := suite.repo.GetUserByID(ctx, user.ID)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "new-hash", updated.PasswordHash)

	err = suite.repo.UpdatePassword(ctx, "no-such-id", "hash")
	assert.Error(suite.T(), err)
}

func TestMongoAccountRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(MongoAccountRepositoryTestSuite))
}
