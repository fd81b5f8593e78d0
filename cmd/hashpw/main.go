// Package main generates a bcrypt hash for ADMIN_PASSWORD_HASH.
//
// Usage: hashpw <password>
package main

import (
	"fmt"
	"os"

	"github.com/detske-trhy/backend/pkg/utils"
)

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, "usage: hashpw <password>")
		os.Exit(2)
	}
	hash, err := utils.HashPassword(os.Args[1])
	if err != nil {
		fmt.Fprintln(os.Stderr, "hash:", err)
		os.Exit(1)
	}
	fmt.Println(hash)
}
