// Package policy decides whether an actor may perform an action on a note or
// user. It has no side effects and never touches storage.
package policy

import "notes-api/models"

type Action int

const (
	Register Action = iota
	Login
	Logout
	Status
	ListNotes
	CreateNote
	ReadNote
	UpdateNote
	DeleteNote
	ListUsers
	DeleteUser
)

var actionNames = [...]string{
	Register:   "register",
	Login:      "login",
	Logout:     "logout",
	Status:     "status",
	ListNotes:  "note.list",
	CreateNote: "note.create",
	ReadNote:   "note.read",
	UpdateNote: "note.update",
	DeleteNote: "note.delete",
	ListUsers:  "user.list",
	DeleteUser: "user.delete",
}

func (a Action) String() string {
	if a < 0 || int(a) >= len(actionNames) {
		return "unknown"
	}
	return actionNames[a]
}

type Decision int

const (
	Deny Decision = iota
	Allow
	// Reject is a refused precondition rather than missing privilege.
	Reject
)

func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case Reject:
		return "reject"
	}
	return "deny"
}

// Resource is what an action targets: a note for note actions, a user id for
// user deletion.
type Resource struct {
	Note   *models.Note
	UserID int
}

func OnNote(n models.Note) Resource { return Resource{Note: &n} }
func OnUser(id int) Resource       { return Resource{UserID: id} }

// Decide applies the rules in order:
//
//  1. anonymous actors may only register, log in, log out and read status
//  2. notes are read and deleted by their owner or any admin
//  3. notes are updated by their owner only; admins get no bypass here
//  4. any authenticated actor lists and creates their own notes
//  5. only admins list or delete users, and an admin cannot delete themselves
func Decide(actor models.Actor, action Action, res Resource) Decision {
	switch action {
	case Register, Login, Logout, Status:
		return Allow
	}
	if !actor.Authenticated() {
		return Deny
	}

	switch action {
	case ListNotes, CreateNote:
		return Allow
	case ReadNote, DeleteNote:
		if res.Note == nil {
			return Deny
		}
		return allowIf(res.Note.OwnerID == actor.UserID || actor.IsAdmin)
	case UpdateNote:
		if res.Note == nil {
			return Deny
		}
		return allowIf(res.Note.OwnerID == actor.UserID)
	case ListUsers:
		return allowIf(actor.IsAdmin)
	case DeleteUser:
		if !actor.IsAdmin {
			return Deny
		}
		if res.UserID == actor.UserID {
			return Reject
		}
		return Allow
	}
	return Deny
}

func allowIf(ok bool) Decision {
	if ok {
		return Allow
	}
	return Deny
}
