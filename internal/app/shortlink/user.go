package shortlink

import "github.com/google/uuid"

// User 目前只是一个 128 位身份标识。
// 单独建一个类型（而不是裸用 uuid.UUID）是为了以后能平滑地长出更丰富的字段。
type User struct {
	ID uuid.UUID
}

// UserStore 表示用户存储的能力。实现见 repo 包。
type UserStore interface {
	Save(user User)
	FindByID(id uuid.UUID) (User, bool)
}

// UserService 是 UserStore 之上的薄门面，只用于给会话铸造匿名身份。
type UserService struct {
	store UserStore
}

func NewUserService(store UserStore) *UserService {
	return &UserService{store: store}
}

// CreateUser 生成一个新的匿名用户并持久化到会话存储。
func (s *UserService) CreateUser() User {
	user := User{ID: uuid.New()}
	s.store.Save(user)
	return user
}

// GetUser 按 ID 查找用户。
func (s *UserService) GetUser(id uuid.UUID) (User, error) {
	user, ok := s.store.FindByID(id)
	if !ok {
		return User{}, ErrNotFound
	}
	return user, nil
}
