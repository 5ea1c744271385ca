package models

import "strings"

// User представляет пользователя системы (участника оценки или утверждения).
type User struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	IsActive  bool   `json:"isActive"`
}

// FullName возвращает имя и фамилию через пробел.
func (u User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// Actor - пользователь, от имени которого выполняется операция.
type Actor struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	Name   string `json:"name"`
}

// ActorFromUser строит Actor по записи пользователя.
func ActorFromUser(u User) Actor {
	return Actor{UserID: u.ID, Email: u.Email, Name: u.FullName()}
}
