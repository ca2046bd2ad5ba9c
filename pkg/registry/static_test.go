// SPDX-License-Identifier: Apache-2.0

package registry

import (
	"context"
	"reflect"
	"testing"
)

const usersDoc = `
apps:
  blog:
    models:
      User:
        table: users
        fields:
          - name: id
            kind: int
            primary_key: true
          - name: name
            kind: char
            max_len: 255
          - name: email
            kind: char
            max_len: 255
            unique: true
          - name: created_at
            kind: datetime
            default:
              kind: auto_now_add
`

func TestLoadStaticRegistry_PreservesFieldDeclarationOrder(t *testing.T) {
	reg, err := LoadStaticRegistry([]byte(usersDoc))
	if err != nil {
		t.Fatalf("LoadStaticRegistry: %v", err)
	}

	models, err := reg.Models(context.Background(), "blog")
	if err != nil {
		t.Fatalf("Models: %v", err)
	}

	user, ok := models["User"]
	if !ok {
		t.Fatalf("expected blog.User to be present")
	}

	want := []string{"id", "name", "email", "created_at"}
	if got := user.FieldNames(); !reflect.DeepEqual(got, want) {
		t.Fatalf("FieldNames = %v, want %v", got, want)
	}
}
