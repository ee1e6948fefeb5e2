// cmd/genhash/main.go
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/laihecha/tea-api/internal/utils"
)

// Prints a bcrypt hash suitable for ADMIN_PASSWORD_HASH. The password comes
// from -password or, when omitted, the first line of stdin.
func main() {
	password := flag.String("password", "", "plain text password to hash")
	flag.Parse()

	if *password == "" {
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil && line == "" {
			logrus.Fatal("No password given: use -password or pipe it on stdin")
		}
		*password = strings.TrimRight(line, "\r\n")
	}
	if *password == "" {
		logrus.Fatal("Password must not be empty")
	}

	hash, err := utils.HashPassword(*password)
	if err != nil {
		logrus.Fatal("Failed to hash password: ", err)
	}

	fmt.Println(hash)
	fmt.Fprintf(os.Stderr, "ADMIN_PASSWORD_HASH=%s\n", hash)
}
