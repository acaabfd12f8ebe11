package auth

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yourusername/taskforge/internal/apperror"
	"github.com/yourusername/taskforge/internal/storage"
)

// dummyPassword は存在しないユーザーへのサインイン時にも bcrypt 照合を行うための値です。
const dummyPassword = "taskforge-dummy-password"

// UserStore は認証処理が必要とするユーザーの永続化操作です。
type UserStore interface {
	CreateUser(ctx context.Context, u storage.User) error
	GetUserByEmail(ctx context.Context, email string) (storage.User, error)
}

// SignupInput はサインアップの入力です。
type SignupInput struct {
	Email    string
	FullName string
	Password string
}

// SigninInput はサインインの入力です。
type SigninInput struct {
	Email    string
	Password string
}

// AuthResult はサインアップ/サインイン成功時の応答です。
type AuthResult struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"fullName"`
	Token    string `json:"token"`
}

// Options は Service の依存関係です。
type Options struct {
	Hasher *PasswordHasher
	Tokens *TokenIssuer
	Policy PasswordPolicy
	Now    func() time.Time
	NewID  func() string
	Logger *log.Logger
}

// Service はサインアップ・サインイン・トークン検証を担います。
// 状態を持たないため、1つのインスタンスを全リクエストで共有できます。
type Service struct {
	users     UserStore
	hasher    *PasswordHasher
	tokens    *TokenIssuer
	validator *inputValidator
	now       func() time.Time
	newID     func() string
	logger    *log.Logger
	dummyHash string
}

// NewService は認証サービスを作成します。
func NewService(users UserStore, opts Options) (*Service, error) {
	if users == nil {
		return nil, errors.New("user store is nil")
	}
	if opts.Hasher == nil {
		return nil, errors.New("password hasher is nil")
	}
	if opts.Tokens == nil {
		return nil, errors.New("token issuer is nil")
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}

	dummyHash, err := opts.Hasher.Hash(dummyPassword)
	if err != nil {
		return nil, err
	}

	return &Service{
		users:     users,
		hasher:    opts.Hasher,
		tokens:    opts.Tokens,
		validator: newInputValidator(opts.Policy),
		now:       opts.Now,
		newID:     opts.NewID,
		logger:    opts.Logger,
		dummyHash: dummyHash,
	}, nil
}

// Signup はアカウントを作成し、トークンを発行します。
func (s *Service) Signup(ctx context.Context, in SignupInput) (*AuthResult, error) {
	in.FullName = strings.TrimSpace(in.FullName)
	if err := s.validator.signup(in); err != nil {
		return nil, err
	}

	_, err := s.users.GetUserByEmail(ctx, in.Email)
	switch {
	case err == nil:
		return nil, apperror.New(apperror.KindConflict, apperror.MsgEmailExists)
	case !errors.Is(err, storage.ErrNotFound):
		return nil, apperror.Wrap(apperror.KindInternal, apperror.MsgInternal, err)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, apperror.Wrap(apperror.KindInternal, apperror.MsgInternal, err)
	}

	now := s.now().UTC()
	user := storage.User{
		ID:           s.newID(),
		Email:        in.Email,
		FullName:     in.FullName,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		// 事前確認をすり抜けた同時登録は一意制約で弾かれる
		if errors.Is(err, storage.ErrDuplicate) {
			s.logger.Printf("signup race resolved by unique constraint email=%s", in.Email)
			return nil, apperror.New(apperror.KindConflict, apperror.MsgEmailExists)
		}
		return nil, apperror.Wrap(apperror.KindInternal, apperror.MsgInternal, err)
	}

	return s.result(user)
}

// Signin は資格情報を検証し、新しいトークンを発行します。
// ユーザー不在とパスワード不一致は同じエラーになります。
func (s *Service) Signin(ctx context.Context, in SigninInput) (*AuthResult, error) {
	if err := s.validator.signin(in); err != nil {
		return nil, err
	}

	user, err := s.users.GetUserByEmail(ctx, in.Email)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			return nil, apperror.Wrap(apperror.KindInternal, apperror.MsgInternal, err)
		}
		// 応答時間からアカウントの有無が推測できないよう照合だけは行う
		_, _ = s.hasher.Compare(s.dummyHash, in.Password)
		return nil, apperror.New(apperror.KindUnauthorized, apperror.MsgInvalidCredentials)
	}

	ok, err := s.hasher.Compare(user.PasswordHash, in.Password)
	if err != nil {
		return nil, apperror.Wrap(apperror.KindInternal, apperror.MsgInternal, err)
	}
	if !ok {
		return nil, apperror.New(apperror.KindUnauthorized, apperror.MsgInvalidCredentials)
	}

	return s.result(user)
}

// VerifyToken はトークンを検証して利用者情報を返します。
func (s *Service) VerifyToken(_ context.Context, token string) (Identity, error) {
	return s.tokens.Verify(token)
}

func (s *Service) result(user storage.User) (*AuthResult, error) {
	token, err := s.tokens.Issue(user.ID, user.Email)
	if err != nil {
		return nil, apperror.Wrap(apperror.KindInternal, apperror.MsgInternal, fmt.Errorf("issue token: %w", err))
	}
	return &AuthResult{
		ID:       user.ID,
		Email:    user.Email,
		FullName: user.FullName,
		Token:    token,
	}, nil
}
