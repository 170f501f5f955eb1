package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"unsafe"

	"github.com/dmitrijs2005/videotube/internal/common"
	"github.com/dmitrijs2005/videotube/internal/server/models"
	"github.com/dmitrijs2005/videotube/internal/server/services"
)

// Registrar creates principals. Register must not retain in.Password past
// the call.
type Registrar interface {
	Register(ctx context.Context, in services.RegisterInput) (*models.Profile, error)
}

// UserAdd prompts for the account fields, reads the password twice and
// registers the principal through r.
func UserAdd(ctx context.Context, r Registrar, reader *bufio.Reader, w io.Writer) (*models.Profile, error) {
	username, err := GetSimpleText(reader, "Enter user name", w)
	if err != nil {
		return nil, err
	}
	email, err := GetSimpleText(reader, "Enter email", w)
	if err != nil {
		return nil, err
	}
	fullName, err := GetSimpleText(reader, "Enter full name", w)
	if err != nil {
		return nil, err
	}

	password, err := GetNewPassword(w)
	if err != nil {
		return nil, err
	}
	defer common.WipeByteArray(password)

	profile, err := r.Register(ctx, services.RegisterInput{
		Username: username,
		Email:    email,
		FullName: fullName,
		Password: secretView(password),
	})
	if err != nil {
		return nil, err
	}

	fmt.Fprintf(w, "Created user %s (%s)\n", profile.Username, profile.ID)
	return profile, nil
}

// secretView returns a string sharing b's memory, so wiping b also wipes the
// string. The string must not be retained after b is wiped.
func secretView(b []byte) string {
	if len(b) == 0 {
		return ""
	}
	return unsafe.String(&b[0], len(b))
}
