package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"nimbusdrive/models"
	"nimbusdrive/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	sessionTokenBytes = 48
	resetTokenBytes   = 32
)

// AuthService is the identity resolver: it maps credential tokens to
// principals and owns the session and password-reset lifecycles. Raw tokens
// are never stored; only their SHA-256 hashes are.
type AuthService struct {
	userCollection *mongo.Collection
	sessionColl    *mongo.Collection
	resetTokenColl *mongo.Collection
	defaultTTL     time.Duration
	rememberTTL    time.Duration
	resetTTL       time.Duration
	jwtSecret      string
	jwtTTL         time.Duration
}

// SessionInfo is handed back on login/signup: the raw cookie token, a bearer
// access token for API clients, and the session expiry.
type SessionInfo struct {
	Token       string        `json:"-"`
	AccessToken string        `json:"accessToken"`
	RememberMe  bool          `json:"rememberMe"`
	ExpiresIn   time.Duration `json:"expiresIn"`
	ExpiresAt   time.Time     `json:"expiresAt"`
}

func NewAuthService(db *mongo.Database, defaultTTL, rememberTTL, resetTTL time.Duration, jwtSecret string, jwtTTL time.Duration) *AuthService {
	return &AuthService{
		userCollection: db.Collection("users"),
		sessionColl:    db.Collection("sessions"),
		resetTokenColl: db.Collection("password_reset_tokens"),
		defaultTTL:     defaultTTL,
		rememberTTL:    rememberTTL,
		resetTTL:       resetTTL,
		jwtSecret:      jwtSecret,
		jwtTTL:         jwtTTL,
	}
}

func (s *AuthService) Signup(ctx context.Context, name, email, password string, rememberMe bool, userAgent string) (*models.User, *SessionInfo, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))

	if name == "" || email == "" || password == "" {
		return nil, nil, fmt.Errorf("name, email, and password are required: %w", ErrValidation)
	}
	if err := utils.ValidateEmail(email); err != nil {
		return nil, nil, fmt.Errorf("%v: %w", err, ErrValidation)
	}

	count, err := s.userCollection.CountDocuments(ctx, bson.M{"email": email})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to check existing account: %w", err)
	}
	if count > 0 {
		return nil, nil, fmt.Errorf("an account with that email already exists: %w", ErrConflict)
	}

	passwordHash, err := utils.HashPassword(password)
	if err != nil {
		return nil, nil, fmt.Errorf("%v: %w", err, ErrValidation)
	}

	now := time.Now()
	user := models.User{
		ID:           primitive.NewObjectID(),
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if _, err := s.userCollection.InsertOne(ctx, user); err != nil {
		return nil, nil, fmt.Errorf("failed to create account: %w", err)
	}

	session, err := s.CreateSession(ctx, &user, rememberMe, userAgent)
	if err != nil {
		return nil, nil, err
	}
	return &user, session, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string, rememberMe bool, userAgent string) (*models.User, *SessionInfo, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, nil, fmt.Errorf("email and password are required: %w", ErrValidation)
	}

	var user models.User
	err := s.userCollection.FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil, fmt.Errorf("invalid email or password: %w", ErrUnauthorized)
	} else if err != nil {
		return nil, nil, fmt.Errorf("database error: %w", err)
	}

	if !utils.VerifyPassword(password, user.PasswordHash) {
		return nil, nil, fmt.Errorf("invalid email or password: %w", ErrUnauthorized)
	}

	session, err := s.CreateSession(ctx, &user, rememberMe, userAgent)
	if err != nil {
		return nil, nil, err
	}
	return &user, session, nil
}

// CreateSession opens a session with the short default lifetime or the long
// remember-me lifetime, and issues a bearer access token alongside it.
func (s *AuthService) CreateSession(ctx context.Context, user *models.User, rememberMe bool, userAgent string) (*SessionInfo, error) {
	token, err := utils.GenerateToken(sessionTokenBytes)
	if err != nil {
		return nil, err
	}

	ttl := s.defaultTTL
	if rememberMe {
		ttl = s.rememberTTL
	}

	now := time.Now()
	session := models.Session{
		UserID:     user.ID,
		TokenHash:  utils.HashToken(token),
		ExpiresAt:  now.Add(ttl),
		RememberMe: rememberMe,
		UserAgent:  userAgent,
		CreatedAt:  now,
	}

	if _, err := s.sessionColl.InsertOne(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	accessToken, err := utils.GenerateAccessToken(user.ID.Hex(), user.Email, user.Name, s.jwtSecret, s.jwtTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to issue access token: %w", err)
	}

	return &SessionInfo{
		Token:       token,
		AccessToken: accessToken,
		RememberMe:  rememberMe,
		ExpiresIn:   ttl,
		ExpiresAt:   session.ExpiresAt,
	}, nil
}

// ResolveSession maps a raw cookie token to its user. Expired sessions are
// deleted lazily on detection.
func (s *AuthService) ResolveSession(ctx context.Context, rawToken string) (*models.User, error) {
	if rawToken == "" {
		return nil, fmt.Errorf("missing session token: %w", ErrUnauthorized)
	}

	var session models.Session
	err := s.sessionColl.FindOne(ctx, bson.M{"token_hash": utils.HashToken(rawToken)}).Decode(&session)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("unknown session: %w", ErrUnauthorized)
	} else if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}

	if session.Expired(time.Now()) {
		if _, err := s.sessionColl.DeleteOne(ctx, bson.M{"_id": session.ID}); err != nil {
			utils.LogWarning("failed to delete expired session: %v", err)
		}
		return nil, fmt.Errorf("session expired: %w", ErrUnauthorized)
	}

	var user models.User
	err = s.userCollection.FindOne(ctx, bson.M{"_id": session.UserID}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("session user no longer exists: %w", ErrUnauthorized)
	} else if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}

	return &user, nil
}

func (s *AuthService) Logout(ctx context.Context, rawToken string) error {
	if rawToken == "" {
		return nil
	}
	_, err := s.sessionColl.DeleteOne(ctx, bson.M{"token_hash": utils.HashToken(rawToken)})
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// RequestPasswordReset issues a fresh reset token, superseding any previous
// ones for the account. The empty string is returned when no account matches
// so callers can respond without revealing account existence.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return "", fmt.Errorf("email is required: %w", ErrValidation)
	}

	var user models.User
	err := s.userCollection.FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return "", nil
	} else if err != nil {
		return "", fmt.Errorf("database error: %w", err)
	}

	token, err := utils.GenerateToken(resetTokenBytes)
	if err != nil {
		return "", err
	}

	if _, err := s.resetTokenColl.DeleteMany(ctx, bson.M{"user_id": user.ID}); err != nil {
		return "", fmt.Errorf("failed to supersede previous reset tokens: %w", err)
	}

	record := models.PasswordResetToken{
		UserID:    user.ID,
		TokenHash: utils.HashToken(token),
		ExpiresAt: time.Now().Add(s.resetTTL),
		CreatedAt: time.Now(),
	}
	if _, err := s.resetTokenColl.InsertOne(ctx, record); err != nil {
		return "", fmt.Errorf("failed to create reset token: %w", err)
	}

	return token, nil
}

// ResetPassword consumes a reset token, rotates the password, deletes all of
// the user's reset tokens, and opens a fresh session.
func (s *AuthService) ResetPassword(ctx context.Context, email, token, password string, rememberMe bool, userAgent string) (*models.User, *SessionInfo, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || token == "" || password == "" {
		return nil, nil, fmt.Errorf("email, token, and new password are required: %w", ErrValidation)
	}

	var user models.User
	err := s.userCollection.FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil, fmt.Errorf("invalid reset request: %w", ErrValidation)
	} else if err != nil {
		return nil, nil, fmt.Errorf("database error: %w", err)
	}

	var record models.PasswordResetToken
	err = s.resetTokenColl.FindOne(ctx, bson.M{
		"user_id":    user.ID,
		"token_hash": utils.HashToken(token),
	}).Decode(&record)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil, fmt.Errorf("reset token is invalid or has expired: %w", ErrValidation)
	} else if err != nil {
		return nil, nil, fmt.Errorf("database error: %w", err)
	}

	if record.ExpiresAt.Before(time.Now()) {
		return nil, nil, fmt.Errorf("reset token is invalid or has expired: %w", ErrValidation)
	}

	passwordHash, err := utils.HashPassword(password)
	if err != nil {
		return nil, nil, fmt.Errorf("%v: %w", err, ErrValidation)
	}

	_, err = s.userCollection.UpdateOne(ctx, bson.M{"_id": user.ID}, bson.M{
		"$set": bson.M{"password_hash": passwordHash, "updated_at": time.Now()},
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to update password: %w", err)
	}
	user.PasswordHash = passwordHash

	if _, err := s.resetTokenColl.DeleteMany(ctx, bson.M{"user_id": user.ID}); err != nil {
		utils.LogWarning("failed to delete consumed reset tokens: %v", err)
	}

	session, err := s.CreateSession(ctx, &user, rememberMe, userAgent)
	if err != nil {
		return nil, nil, err
	}
	return &user, session, nil
}

// EnsureIndexes creates the unique and TTL indexes the auth collections rely
// on. Mongo expires sessions and reset tokens at expires_at; resolution
// still checks expiry because TTL deletion is lazy.
func (s *AuthService) EnsureIndexes(ctx context.Context) error {
	_, err := s.userCollection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("email_unique_index"),
	})
	if err != nil {
		return fmt.Errorf("failed to create user email index: %w", err)
	}

	for _, coll := range []*mongo.Collection{s.sessionColl, s.resetTokenColl} {
		_, err := coll.Indexes().CreateOne(ctx, mongo.IndexModel{
			Keys:    bson.D{{Key: "token_hash", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("token_hash_unique_index"),
		})
		if err != nil {
			return fmt.Errorf("failed to create token hash index: %w", err)
		}

		_, err = coll.Indexes().CreateOne(ctx, mongo.IndexModel{
			Keys:    bson.D{{Key: "expires_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(0).SetName("expires_at_ttl_index"),
		})
		if err != nil {
			return fmt.Errorf("failed to create TTL index: %w", err)
		}
	}

	return nil
}
