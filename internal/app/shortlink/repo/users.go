package repo

import (
	"sync"

	"clck.local/internal/app/shortlink"
	"github.com/google/uuid"
)

// UsersRepo 是 shortlink.UserStore 的内存实现。
// 会话期间用户只增不改不删，所以结构非常简单。
type UsersRepo struct {
	mu    sync.RWMutex
	users map[uuid.UUID]shortlink.User
}

func NewUsersRepo() *UsersRepo {
	return &UsersRepo{
		users: make(map[uuid.UUID]shortlink.User),
	}
}

func (r *UsersRepo) Save(user shortlink.User) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[user.ID] = user
}

func (r *UsersRepo) FindByID(id uuid.UUID) (shortlink.User, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.users[id]
	return user, ok
}
