package stor

import (
	"sync"

	"github.com/materials-commons/mcvr/pkg/mcdb/mcmodel"
)

type InMemoryUserStor struct {
	mu    sync.Mutex
	users []mcmodel.User
}

func NewInMemoryUserStor(users []mcmodel.User) *InMemoryUserStor {
	return &InMemoryUserStor{users: users}
}

func (s *InMemoryUserStor) CreateUser(user *mcmodel.User) (*mcmodel.User, error) {
	if err := prepareUser(user); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.users = append(s.users, *user)
	return user, nil
}

func (s *InMemoryUserStor) GetUserByID(id string) (*mcmodel.User, error) {
	return s.find(func(u mcmodel.User) bool { return u.ID == id })
}

func (s *InMemoryUserStor) GetUserByLogin(login string) (*mcmodel.User, error) {
	return s.find(func(u mcmodel.User) bool { return u.Login == login })
}

func (s *InMemoryUserStor) GetUserByAPIToken(apitoken string) (*mcmodel.User, error) {
	return s.find(func(u mcmodel.User) bool { return u.ApiToken != "" && u.ApiToken == apitoken })
}

func (s *InMemoryUserStor) find(match func(u mcmodel.User) bool) (*mcmodel.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if match(u) {
			found := u
			return &found, nil
		}
	}

	return nil, ErrNotFound
}
