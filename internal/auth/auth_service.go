package auth

import (
	"context"
	"strings"
	"time"

	autherrors "stage-manager/internal/auth/errors"
	"stage-manager/internal/permission"
	"stage-manager/internal/student"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

// Display names used when the login form leaves the name empty.
var defaultNames = map[permission.Role]string{
	permission.RoleStudent: "Carlos Silva",
	permission.RoleSchool:  "Escola Técnica Federal",
	permission.RoleCompany: "Empresa ABC Tecnologia",
}

//go:generate mockgen -source=auth_service.go -destination=mock/auth_service_mock.go -package=mock
type Service interface {
	Login(ctx context.Context, req LoginRequest) (LoginResponse, error)
	Me(ctx context.Context, actor permission.Actor) AuthResponse
}

type service struct {
	students student.Repository
	secret   []byte
	ttl      time.Duration
	now      func() time.Time
	logger   *zap.Logger
}

func NewService(students student.Repository, secret string, ttl time.Duration, logger ...*zap.Logger) Service {
	l := zap.L().Named("auth.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("auth.service")
	}
	return &service{
		students: students,
		secret:   []byte(secret),
		ttl:      ttl,
		now:      time.Now,
		logger:   l,
	}
}

// Login opens a session for the chosen role. There is no password: the role
// is trusted, only a student session is tied to a stored student.
func (s *service) Login(ctx context.Context, req LoginRequest) (LoginResponse, error) {
	role, err := permission.ParseRole(req.Role)
	if err != nil {
		return LoginResponse{}, autherrors.ErrInvalidRole
	}

	user := AuthResponse{
		ID:   string(role),
		Name: strings.TrimSpace(req.Name),
		Role: string(role),
	}

	if role == permission.RoleStudent {
		if strings.TrimSpace(req.StudentID) == "" {
			return LoginResponse{}, autherrors.ErrStudentIDRequired
		}
		st, err := s.students.FindByID(ctx, req.StudentID)
		if err != nil {
			s.logger.Warn("login student lookup failed",
				zap.String("student_id", req.StudentID),
				zap.Error(err),
			)
			return LoginResponse{}, err
		}
		user.ID = st.ID
		if user.Name == "" {
			user.Name = st.Name
		}
	}
	if user.Name == "" {
		user.Name = defaultNames[role]
	}

	expiresAt := s.now().Add(s.ttl)
	token, err := s.generateToken(user, expiresAt)
	if err != nil {
		s.logger.Error("login sign token failed", zap.Error(err))
		return LoginResponse{}, autherrors.ErrTokenGenerationFailed
	}

	s.logger.Info("login success",
		zap.String("user_id", user.ID),
		zap.String("role", user.Role),
	)
	return LoginResponse{User: user, AccessToken: token, ExpiresAt: expiresAt.Unix()}, nil
}

func (s *service) Me(_ context.Context, actor permission.Actor) AuthResponse {
	return AuthResponse{ID: actor.ID, Name: actor.Name, Role: actor.Role.String()}
}

func (s *service) generateToken(user AuthResponse, expiresAt time.Time) (string, error) {
	claims := jwt.MapClaims{
		"user_id": user.ID,
		"name":    user.Name,
		"role":    user.Role,
		"iat":     s.now().Unix(),
		"exp":     expiresAt.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}
