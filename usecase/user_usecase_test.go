package usecase_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/Jhoseto/factcheckerAI-sub002/domain/model"
	"github.com/Jhoseto/factcheckerAI-sub002/usecase"
)

func TestUserUsecase_Login_InvalidCredentials(t *testing.T) {
	us := new(MockUser)
	us.On("GetByUserName", mock.Anything, testUser).
		Return(model.User{UserName: testUser, Password: "otherhash"}, nil)

	uc := usecase.NewUserUsecase(us)
	res := uc.Login(context.Background(), model.ReqLogin{UserName: testUser, Password: "wronghash"})
	assert.Equal(t, "401", res.ResponseCode)
	assert.Nil(t, res.Data)
}

func TestUserUsecase_Login_UnknownUser(t *testing.T) {
	us := new(MockUser)
	us.On("GetByUserName", mock.Anything, "ghost").Return(model.User{}, assert.AnError)

	uc := usecase.NewUserUsecase(us)
	res := uc.Login(context.Background(), model.ReqLogin{UserName: "ghost", Password: "hash"})
	assert.Equal(t, "401", res.ResponseCode)
}

func TestUserUsecase_Login_Success(t *testing.T) {
	t.Setenv("SECRET_KEY", "test-secret")
	us := new(MockUser)
	us.On("GetByUserName", mock.Anything, testUser).
		Return(model.User{UserName: testUser, Password: "samehash", Points: 50}, nil)

	uc := usecase.NewUserUsecase(us)
	res := uc.Login(context.Background(), model.ReqLogin{UserName: testUser, Password: "samehash"})

	assert.Equal(t, "200", res.ResponseCode)
	data, ok := res.Data.(map[string]interface{})
	assert.True(t, ok)
	assert.NotEmpty(t, data["token"])
	assert.Equal(t, 50, data["points"])
}

func TestUserUsecase_Register_DuplicateUserName(t *testing.T) {
	us := new(MockUser)
	us.On("GetByUserName", mock.Anything, testUser).Return(model.User{UserName: testUser}, nil)

	uc := usecase.NewUserUsecase(us)
	res := uc.Register(context.Background(), model.ReqRegister{Name: "Jhoseto", UserName: testUser, Password: "hash"})
	assert.Equal(t, "409", res.ResponseCode)
	us.AssertNotCalled(t, "CreateUser", mock.Anything, mock.Anything)
}

func TestUserUsecase_Register_Success(t *testing.T) {
	us := new(MockUser)
	us.On("GetByUserName", mock.Anything, testUser).Return(model.User{}, assert.AnError)
	us.On("CreateUser", mock.Anything, mock.MatchedBy(func(u model.User) bool {
		return u.UserName == testUser && u.Password == "hash"
	})).Return(nil).Once()

	uc := usecase.NewUserUsecase(us)
	res := uc.Register(context.Background(), model.ReqRegister{Name: "Jhoseto", UserName: testUser, Password: "hash"})
	assert.Equal(t, "201", res.ResponseCode)
	us.AssertExpectations(t)
}
