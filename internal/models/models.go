// Package models contains the persisted entities and their API shapes.
package models

// All lists every persisted model, in migration order
func All() []interface{} {
	return []interface{}{
		&User{},
		&Post{},
		&HashTag{},
		&Comment{},
		&PostLike{},
	}
}
