package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/minicrm/backend/internal/infrastructure/auth"
	"golang.org/x/crypto/bcrypt"
)

// Prints a bcrypt hash for admin.password_hash. The password is read from
// the first argument or, when absent, from the first line of stdin.
func main() {
	cost := flag.Int("cost", bcrypt.DefaultCost, "bcrypt cost")
	flag.Parse()

	password := flag.Arg(0)
	if password == "" {
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil && line == "" {
			fmt.Fprintln(os.Stderr, "usage: hashpassword [-cost n] <password>")
			os.Exit(1)
		}
		password = strings.TrimRight(line, "\r\n")
	}

	hash, err := auth.NewHasher(*cost).Hash(password)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to hash password: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(hash)
}
