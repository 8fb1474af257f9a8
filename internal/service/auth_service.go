package service

import (
	"context"
	"time"

	"github.com/Asna-1994/ArticleSphere/internal/apperr"
	"github.com/Asna-1994/ArticleSphere/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"
)

type AuthService struct {
	users         UserStore
	categories    CategoryStore
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

type RegisterUserData struct {
	FirstName   string
	LastName    string
	Email       string
	Phone       string
	DOB         time.Time
	Password    string
	Preferences []string
}

type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

func NewAuthService(users UserStore, categories CategoryStore, accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) *AuthService {
	return &AuthService{
		users:         users,
		categories:    categories,
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}
}

// ================== REGISTER & LOGIN ==================

// Register crea un usuario nuevo. Email y phone son únicos.
func (s *AuthService) Register(ctx context.Context, data RegisterUserData) (*models.UserDoc, error) {
	if data.Email == "" || data.Password == "" || data.FirstName == "" {
		return nil, apperr.Validation("firstName, email and password are required")
	}

	existing, err := s.users.FindByEmail(ctx, data.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperr.Conflict(apperr.MsgUserAlreadyExists)
	}

	if data.Phone != "" {
		existing, err = s.users.FindByPhone(ctx, data.Phone)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return nil, apperr.Conflict(apperr.MsgPhoneAlreadyExists)
		}
	}

	prefs, err := parseObjectIDs(data.Preferences)
	if err != nil {
		return nil, apperr.Validation("invalid preference id")
	}
	if len(prefs) > 0 {
		refs, err := s.categories.FindRefsByIDs(ctx, prefs)
		if err != nil {
			return nil, err
		}
		for _, id := range prefs {
			if _, ok := refs[id]; !ok {
				return nil, apperr.Validation("unknown category in preferences")
			}
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(data.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	u := &models.UserDoc{
		FirstName:    data.FirstName,
		LastName:     data.LastName,
		Email:        data.Email,
		Phone:        data.Phone,
		DOB:          data.DOB,
		PasswordHash: string(hash),
		Preferences:  prefs,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	// el chequeo previo no cubre dos registros simultáneos: si el
	// índice único salta igual, es un conflicto, no un 500
	if err := s.users.Insert(ctx, u); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, apperr.Conflict(apperr.MsgUserAlreadyExists)
		}
		return nil, err
	}
	return u, nil
}

// Login acepta email o teléfono como identificador. La sesión es única:
// el refresh token nuevo pisa al anterior.
func (s *AuthService) Login(ctx context.Context, identifier, password string) (*models.UserDoc, *TokenPair, error) {
	u, err := s.users.FindByEmail(ctx, identifier)
	if err != nil {
		return nil, nil, err
	}
	if u == nil {
		u, err = s.users.FindByPhone(ctx, identifier)
		if err != nil {
			return nil, nil, err
		}
	}
	if u == nil {
		return nil, nil, apperr.Unauthorized(apperr.MsgInvalidCredential)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, nil, apperr.Unauthorized(apperr.MsgInvalidCredential)
	}

	pair, err := s.generateTokens(u.ID)
	if err != nil {
		return nil, nil, err
	}
	if err := s.users.SetRefreshToken(ctx, u.ID, pair.RefreshToken); err != nil {
		return nil, nil, err
	}
	u.RefreshToken = pair.RefreshToken
	return u, pair, nil
}

// Refresh valida el refresh token contra el guardado en el usuario y
// rota el par completo. Cualquier falla es Unauthorized (sesión muerta).
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	userID, err := s.parseToken(refreshToken, s.refreshSecret)
	if err != nil {
		return nil, apperr.Unauthorized(apperr.MsgInvalidToken)
	}

	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u == nil || u.RefreshToken != refreshToken {
		return nil, apperr.Unauthorized(apperr.MsgInvalidToken)
	}

	pair, err := s.generateTokens(u.ID)
	if err != nil {
		return nil, err
	}
	if err := s.users.SetRefreshToken(ctx, u.ID, pair.RefreshToken); err != nil {
		return nil, err
	}
	return pair, nil
}

// Logout invalida la sesión guardada.
func (s *AuthService) Logout(ctx context.Context, userID primitive.ObjectID) error {
	return s.users.SetRefreshToken(ctx, userID, "")
}

// ChangePassword verifica la password actual antes de cambiarla.
func (s *AuthService) ChangePassword(ctx context.Context, userID primitive.ObjectID, current, next string) error {
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if u == nil {
		return apperr.NotFound(apperr.MsgUserNotFound)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(current)); err != nil {
		return apperr.Unauthorized("entered password is incorrect")
	}
	if next == "" {
		return apperr.Validation("new password cannot be empty")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(next), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.users.UpdateByID(ctx, userID, map[string]any{
		"passwordHash": string(hash),
		"updatedAt":    time.Now().UTC(),
	})
}

// ================== TOKENS ==================

// VerifyAccessToken devuelve el userId de un access token válido.
func (s *AuthService) VerifyAccessToken(token string) (primitive.ObjectID, error) {
	id, err := s.parseToken(token, s.accessSecret)
	if err != nil {
		return primitive.NilObjectID, apperr.Unauthorized(apperr.MsgInvalidToken)
	}
	return id, nil
}

func (s *AuthService) generateTokens(userID primitive.ObjectID) (*TokenPair, error) {
	now := time.Now()

	// jti con uuid: dos rotaciones en el mismo segundo producen
	// tokens distintos, si no la comparación de rotación no detecta
	// tokens viejos
	access := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": userID.Hex(),
		"jti": uuid.NewString(),
		"iat": now.Unix(),
		"exp": now.Add(s.accessTTL).Unix(),
	})
	accessStr, err := access.SignedString(s.accessSecret)
	if err != nil {
		return nil, err
	}

	refresh := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": userID.Hex(),
		"jti": uuid.NewString(),
		"iat": now.Unix(),
		"exp": now.Add(s.refreshTTL).Unix(),
	})
	refreshStr, err := refresh.SignedString(s.refreshSecret)
	if err != nil {
		return nil, err
	}

	return &TokenPair{AccessToken: accessStr, RefreshToken: refreshStr}, nil
}

func (s *AuthService) parseToken(tokenStr string, secret []byte) (primitive.ObjectID, error) {
	token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return secret, nil
	})
	if err != nil || !token.Valid {
		return primitive.NilObjectID, jwt.ErrTokenInvalidClaims
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return primitive.NilObjectID, jwt.ErrTokenInvalidClaims
	}
	sub, _ := claims["sub"].(string)
	return primitive.ObjectIDFromHex(sub)
}

func parseObjectIDs(hexIDs []string) ([]primitive.ObjectID, error) {
	out := make([]primitive.ObjectID, 0, len(hexIDs))
	for _, h := range hexIDs {
		id, err := primitive.ObjectIDFromHex(h)
		if err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, nil
}
