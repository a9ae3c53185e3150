package models

type User struct {
	ID       int    `json:"id" yaml:"-"`
	Name     string `json:"name" yaml:"name"`
	Email    string `json:"email" yaml:"email"`
	Password string `json:"-" yaml:"password"`
	IsAdmin  bool   `json:"admin" yaml:"admin"`
}

// UserSummary is a User without its credential, as returned by admin listings.
type UserSummary struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	IsAdmin bool   `json:"admin"`
}

func (u User) Summary() UserSummary {
	return UserSummary{ID: u.ID, Name: u.Name, Email: u.Email, IsAdmin: u.IsAdmin}
}

type Note struct {
	ID      int    `json:"id"`
	Title   string `json:"title"`
	Content string `json:"content"`
	OwnerID int    `json:"owner_id"`
}

// NoteUpdate carries a partial note edit. A nil field is left unchanged.
type NoteUpdate struct {
	Title   *string `json:"title"`
	Content *string `json:"content"`
}

func (u NoteUpdate) Empty() bool {
	return u.Title == nil && u.Content == nil
}

// Actor is the identity behind a request. The zero value is anonymous.
type Actor struct {
	UserID  int
	IsAdmin bool
}

var Anonymous = Actor{}

func (a Actor) Authenticated() bool {
	return a.UserID > 0
}

type Stats struct {
	Users int
	Notes int
}
