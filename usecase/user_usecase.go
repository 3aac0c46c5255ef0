package usecase

import (
	"context"
	"os"
	"time"

	"github.com/Jhoseto/factcheckerAI-sub002/domain/dto"
	"github.com/Jhoseto/factcheckerAI-sub002/domain/model"
	"github.com/Jhoseto/factcheckerAI-sub002/domain/repository"
	"github.com/Jhoseto/factcheckerAI-sub002/infrastructure/logger"
	"github.com/Jhoseto/factcheckerAI-sub002/infrastructure/utils"
)

const tokenTTL = 24 * time.Hour

type IUserUsecase interface {
	Login(ctx context.Context, req model.ReqLogin) dto.Res
	Register(ctx context.Context, req model.ReqRegister) dto.Res
}

type userUsecase struct {
	userRepository repository.IUser
}

func NewUserUsecase(userRepository repository.IUser) IUserUsecase {
	return &userUsecase{userRepository: userRepository}
}

func (u *userUsecase) Login(ctx context.Context, req model.ReqLogin) dto.Res {
	var res dto.Res

	user, err := u.userRepository.GetByUserName(ctx, req.UserName)
	if err != nil {
		logger.GetLogger().WithField("user_name", req.UserName).Info("user not found")
		res.ResponseCode = "401"
		res.ResponseMessage = "Invalid credentials"
		return res
	}
	if user.Password != req.Password {
		res.ResponseCode = "401"
		res.ResponseMessage = "Invalid credentials"
		return res
	}

	payload := map[string]interface{}{
		"user_name": user.UserName,
		"exp":       utils.GetCurrentTime().Add(tokenTTL).Unix(),
	}
	token, err := utils.GenerateToken(payload, os.Getenv("SECRET_KEY"))
	if err != nil {
		res.ResponseCode = "500"
		res.ResponseMessage = "General error"
		return res
	}

	res.ResponseCode = "200"
	res.ResponseMessage = "Success"
	res.Data = map[string]interface{}{
		"token":  token,
		"points": user.Points,
	}
	return res
}

func (u *userUsecase) Register(ctx context.Context, req model.ReqRegister) dto.Res {
	var res dto.Res

	if _, err := u.userRepository.GetByUserName(ctx, req.UserName); err == nil {
		res.ResponseCode = "409"
		res.ResponseMessage = "User already exists"
		return res
	}

	user := model.User{
		Name:      req.Name,
		UserName:  req.UserName,
		Password:  req.Password,
		CreatedAt: utils.GetCurrentTime(),
		UpdatedAt: utils.GetCurrentTime(),
	}
	if err := u.userRepository.CreateUser(ctx, user); err != nil {
		logger.GetLogger().WithField("error", err).Error("Error while create user")
		res.ResponseCode = "500"
		res.ResponseMessage = "General error"
		return res
	}

	res.ResponseCode = "201"
	res.ResponseMessage = "Created"
	return res
}
