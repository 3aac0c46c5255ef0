package http

import (
	"crypto/md5"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Jhoseto/factcheckerAI-sub002/domain/model"
	"github.com/Jhoseto/factcheckerAI-sub002/domain/repository"
	"github.com/Jhoseto/factcheckerAI-sub002/infrastructure/logger"
	"github.com/Jhoseto/factcheckerAI-sub002/usecase"
)

type IUserHandler interface {
	Login(c *gin.Context)
	Register(c *gin.Context)
	GetBalance(c *gin.Context)
	RefreshBalance(c *gin.Context)
}

type UserHandler struct {
	userUsecase    usecase.IUserUsecase
	userRepository repository.IUser
}

func NewUserHandler(userUsecase usecase.IUserUsecase, userRepository repository.IUser) IUserHandler {
	return &UserHandler{userUsecase: userUsecase, userRepository: userRepository}
}

func (userHandler *UserHandler) Login(c *gin.Context) {
	var req model.ReqLogin

	if err := c.ShouldBindJSON(&req); err != nil {
		logger.GetLogger().WithField("error", err).Error(ErrorUnmarshal)
		c.JSON(http.StatusBadRequest, fmt.Sprintf("%s %v", ErrorUnmarshal, err.Error()))
		return
	}
	data := []byte(req.Password)
	req.Password = fmt.Sprintf("%x", md5.Sum(data))

	res := userHandler.userUsecase.Login(c.Request.Context(), req)

	c.JSON(http.StatusOK, res)
}

func (userHandler *UserHandler) Register(c *gin.Context) {
	var req model.ReqRegister

	if err := c.ShouldBindJSON(&req); err != nil {
		logger.GetLogger().WithField("error", err).Error(ErrorUnmarshal)
		c.JSON(http.StatusBadRequest, fmt.Sprintf("An error occurred: %v", err.Error()))
		return
	}
	data := []byte(req.Password)
	req.Password = fmt.Sprintf("%x", md5.Sum(data))

	res := userHandler.userUsecase.Register(c.Request.Context(), req)

	c.JSON(http.StatusOK, res)
}

// GetBalance reads the live point balance for the authenticated user.
func (userHandler *UserHandler) GetBalance(c *gin.Context) {
	userID := c.GetString("user_id")
	balance, err := userHandler.userRepository.GetBalance(c.Request.Context(), userID)
	if err != nil {
		logger.GetLogger().WithField("user_id", userID).WithField("error", err.Error()).Error("balance read failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"points": balance})
}

// RefreshBalance re-reads the balance from the store so the client can force
// a sync after an audit completes without a new_balance.
func (userHandler *UserHandler) RefreshBalance(c *gin.Context) {
	userHandler.GetBalance(c)
}
