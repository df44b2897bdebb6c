// Package auth содержит логику бизнес-уровня для работы с пользователями и аутентификацией:
// регистрацию с политикой стойкости пароля, вход с единой ошибкой для неизвестного
// пользователя и неверного пароля, выпуск и проверку JWT и смену роли администратором.
package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/slogantech/intelliweb/internal/lib/jwt"
	"github.com/slogantech/intelliweb/internal/lib/password"
	"github.com/slogantech/intelliweb/internal/models"
)

// dummyHash — заранее вычисленный bcrypt-хэш случайной строки.
// Сравнение с ним при неизвестном username выравнивает время ответа
// с веткой "пользователь найден, пароль неверен".
const dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// UserRepository описывает контракт для работы с пользователями в базе данных.
type UserRepository interface {
	// CreateUser сохраняет нового пользователя и возвращает его UID.
	CreateUser(ctx context.Context, user models.User) (string, error)

	// GetUserByUsername возвращает пользователя по имени или models.ErrNotFound.
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)

	// GetUser возвращает пользователя по UID.
	GetUser(ctx context.Context, userUID string) (*models.User, error)

	// UpdateUserRole обновляет роль пользователя.
	UpdateUserRole(ctx context.Context, username string, role models.Role) error

	// UpdateUserProfile обновляет отображаемые данные пользователя.
	UpdateUserProfile(ctx context.Context, userUID, fullName, email string, profilePictureURL *string) error
}

// AuthService отвечает за регистрацию, авторизацию, выпуск и валидацию JWT.
type AuthService struct {
	users    UserRepository
	jwtMaker jwt.Maker
	hasher   *password.Hasher
}

// NewAuthService создает новый экземпляр AuthService.
func NewAuthService(users UserRepository, jwtMaker jwt.Maker, hasher *password.Hasher) *AuthService {
	return &AuthService{
		users:    users,
		jwtMaker: jwtMaker,
		hasher:   hasher,
	}
}

// Register создает нового пользователя с хэшированием пароля и дефолтной ролью "user".
//
// Возвращает models.ErrWeakCredential, если пароль не проходит политику стойкости,
// и models.ErrDuplicateIdentity, если username или email уже заняты.
func (s *AuthService) Register(ctx context.Context, email, username, fullName, rawPassword string) (string, error) {
	const op = "auth.Register"
	if err := password.ValidatePolicy(rawPassword); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	hashed, err := s.hasher.GetHash(rawPassword)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	user := models.User{
		Email:        email,
		Username:     username,
		FullName:     fullName,
		PasswordHash: hashed,
		Role:         models.RoleUser, // дефолтная роль при регистрации
	}
	uid, err := s.users.CreateUser(ctx, user)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return uid, nil
}

// Login проверяет пароль пользователя и генерирует JWT.
//
// Неизвестный username и неверный пароль дают одинаковую ошибку
// models.ErrInvalidCredential, чтобы не допускать перечисления пользователей.
func (s *AuthService) Login(ctx context.Context, username, rawPassword string) (token string, user *models.User, err error) {
	const op = "auth.Login"
	user, err = s.users.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			// Холостое сравнение, чтобы не выдавать отсутствие пользователя по времени ответа.
			_ = password.CompareHash(dummyHash, rawPassword)
			return "", nil, fmt.Errorf("%s: %w", op, models.ErrInvalidCredential)
		}
		return "", nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = password.CompareHash(user.PasswordHash, rawPassword); err != nil {
		return "", nil, fmt.Errorf("%s: %w", op, models.ErrInvalidCredential)
	}
	token, err = s.jwtMaker.GenerateToken(user.Username, user.Role)
	if err != nil {
		return "", nil, fmt.Errorf("%s: %w", op, err)
	}
	return token, user, nil
}

// ValidateToken проверяет JWT и возвращает claims, если токен корректен.
func (s *AuthService) ValidateToken(_ context.Context, token string) (*jwt.CustomClaims, error) {
	const op = "auth.ValidateToken"
	claims, err := s.jwtMaker.ParseToken(token)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return claims, nil
}

// SetRole меняет роль пользователя. Операция доступна только администратору,
// иначе возвращается models.ErrForbidden. Уже выпущенные токены цели
// сохраняют прежнюю роль до естественного истечения срока действия.
func (s *AuthService) SetRole(ctx context.Context, actingRole models.Role, targetUsername string, newRole models.Role) error {
	const op = "auth.SetRole"
	if !actingRole.Meets(models.RoleAdmin) {
		return fmt.Errorf("%s: %w", op, models.ErrForbidden)
	}
	if !newRole.Valid() {
		return fmt.Errorf("%s: unknown role %q", op, newRole)
	}
	if err := s.users.UpdateUserRole(ctx, targetUsername, newRole); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// UpdateProfile обновляет полное имя, email и аватар пользователя.
func (s *AuthService) UpdateProfile(ctx context.Context, userUID, fullName, email string, profilePictureURL *string) error {
	const op = "auth.UpdateProfile"
	if err := s.users.UpdateUserProfile(ctx, userUID, fullName, email, profilePictureURL); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// GetUser возвращает пользователя по UID.
func (s *AuthService) GetUser(ctx context.Context, userUID string) (*models.User, error) {
	const op = "auth.GetUser"
	user, err := s.users.GetUser(ctx, userUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return user, nil
}

// GetByUsername возвращает пользователя по username из claims токена.
func (s *AuthService) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	const op = "auth.GetByUsername"
	user, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return user, nil
}
