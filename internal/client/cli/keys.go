package cli

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
)

// NewKey prompts for a description and optional roles and creates an API
// key. The raw secret is printed exactly once; the server cannot reveal it
// again.
func (a *App) NewKey(ctx context.Context) error {
	description, err := getSimpleText(a.reader, "Enter description", os.Stdout)
	if err != nil {
		return err
	}

	rolesLine, err := getSimpleText(a.reader, "Enter roles (comma-separated, empty for none)", os.Stdout)
	if err != nil {
		return err
	}
	var roles []string
	for _, r := range strings.Split(rolesLine, ",") {
		if r = strings.TrimSpace(r); r != "" {
			roles = append(roles, r)
		}
	}

	key, err := a.api.CreateKey(ctx, description, roles, nil)
	if err != nil {
		log.Printf("Key creation unsuccessful: %s", err.Error())
		return err
	}

	fmt.Printf("Created key #%d\n", key.ID)
	fmt.Printf("Secret (store it now, it will not be shown again): %s\n", key.Key)
	return nil
}

// ListKeys prints the caller's keys.
func (a *App) ListKeys(ctx context.Context) error {
	keys, err := a.api.ListKeys(ctx)
	if err != nil {
		log.Printf("Listing unsuccessful: %s", err.Error())
		return err
	}

	if len(keys) == 0 {
		fmt.Println("No keys")
		return nil
	}
	for _, k := range keys {
		status := "active"
		if !k.Active {
			status = "revoked"
		}
		expires := "never"
		if k.ExpiresAt != nil {
			expires = k.ExpiresAt.Format("2006-01-02 15:04")
		}
		fmt.Printf("#%d  %-10s  expires: %-16s  roles: %s  %s\n",
			k.ID, status, expires, strings.Join(k.Roles, ","), k.Description)
	}
	return nil
}

// RevokeKey prompts for a key ID and revokes it.
func (a *App) RevokeKey(ctx context.Context) error {
	idLine, err := getSimpleText(a.reader, "Enter key ID", os.Stdout)
	if err != nil {
		return err
	}
	keyID, err := strconv.ParseInt(idLine, 10, 64)
	if err != nil {
		fmt.Println("Invalid key ID")
		return err
	}

	if err := a.api.RevokeKey(ctx, keyID); err != nil {
		log.Printf("Revocation unsuccessful: %s", err.Error())
		return err
	}

	fmt.Println("Revoked")
	return nil
}
