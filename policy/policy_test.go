package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"inkwell/model"
)

func TestDecide(t *testing.T) {
	author := Actor{UserID: "author-1", Role: model.RoleAuthor}
	otherAuthor := Actor{UserID: "author-2", Role: model.RoleAuthor}
	reader := Actor{UserID: "reader-1", Role: model.RoleReader}

	published := &model.Post{Id: "p-1", AuthorID: author.UserID, Published: true}
	draft := &model.Post{Id: "p-2", AuthorID: author.UserID, Published: false}

	for _, tt := range []struct {
		name   string
		actor  Actor
		action Action
		res    Resource
		want   Decision
	}{
		{"author creates post", author, ActionCreatePost, Resource{}, Allow},
		{"reader cannot create post", reader, ActionCreatePost, Resource{}, Deny},
		{"anonymous cannot create post", Anonymous, ActionCreatePost, Resource{}, Deny},

		{"anonymous reads published", Anonymous, ActionReadPost, Resource{Post: published}, Allow},
		{"reader reads published", reader, ActionReadPost, Resource{Post: published}, Allow},
		{"owner previews draft", author, ActionReadPost, Resource{Post: draft}, Allow},
		{"other author cannot read draft", otherAuthor, ActionReadPost, Resource{Post: draft}, Deny},
		{"reader cannot read draft", reader, ActionReadPost, Resource{Post: draft}, Deny},
		{"anonymous cannot read draft", Anonymous, ActionReadPost, Resource{Post: draft}, Deny},
		{"missing post reads deny", reader, ActionReadPost, Resource{}, Deny},

		{"owner updates post", author, ActionUpdatePost, Resource{Post: published}, Allow},
		{"other author cannot update", otherAuthor, ActionUpdatePost, Resource{Post: published}, Deny},
		{"reader cannot update", reader, ActionUpdatePost, Resource{Post: published}, Deny},
		{"owner deletes post", author, ActionDeletePost, Resource{Post: draft}, Allow},
		{"other author cannot delete", otherAuthor, ActionDeletePost, Resource{Post: published}, Deny},
		{"anonymous cannot delete", Anonymous, ActionDeletePost, Resource{Post: published}, Deny},

		{"anonymous comments", Anonymous, ActionCreateComment, Resource{Post: published}, Allow},
		{"reader comments", reader, ActionCreateComment, Resource{Post: published}, Allow},
		{"nobody updates comments", author, ActionUpdateComment, Resource{}, Deny},
		{"nobody deletes comments", author, ActionDeleteComment, Resource{}, Deny},

		{"anonymous reads categories", Anonymous, ActionReadCategory, Resource{}, Allow},

		{"owner updates own profile", reader, ActionUpdateProfile, Resource{ProfileOwnerID: reader.UserID}, Allow},
		{"cannot update another profile", reader, ActionUpdateProfile, Resource{ProfileOwnerID: author.UserID}, Deny},
		{"anonymous cannot update profile", Anonymous, ActionUpdateProfile, Resource{}, Deny},
	} {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Decide(tt.actor, tt.action, tt.res))
		})
	}
}

func TestRoleChangeGrantsAuthorship(t *testing.T) {
	actor := Actor{UserID: "u-1", Role: model.RoleReader}
	assert.Equal(t, Deny, Decide(actor, ActionCreatePost, Resource{}))

	actor.Role = model.RoleAuthor
	assert.Equal(t, Allow, Decide(actor, ActionCreatePost, Resource{}))
}
