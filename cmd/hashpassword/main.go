// Command hashpassword prints an argon2id hash for ADMIN_PASSWORD.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/hireline/hireline/internal/auth"
)

func main() {
	password := flag.String("password", "", "Password to hash; read from stdin when empty")
	flag.Parse()

	secret := *password
	if secret == "" {
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil && line == "" {
			fmt.Fprintln(os.Stderr, "read password:", err)
			os.Exit(1)
		}
		secret = strings.TrimRight(line, "\r\n")
	}
	if secret == "" {
		fmt.Fprintln(os.Stderr, "password must not be empty")
		os.Exit(1)
	}

	hash, err := auth.HashPassword(secret)
	if err != nil {
		fmt.Fprintln(os.Stderr, "hash password:", err)
		os.Exit(1)
	}
	fmt.Println(hash)
}
