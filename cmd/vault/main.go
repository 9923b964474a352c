// Package main provides a CLI tool for sealing and unsealing export files.
package main

import (
	"flag"
	"fmt"
	"os"

	"golang.org/x/term"

	"finlens/internal/services/storage"
)

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: vault <encrypt|decrypt> [flags] <file>

Seals or unseals a finlens export file in place using age with a passphrase.

Flags:
`)
	flag.PrintDefaults()
}

func main() {
	flag.Usage = usage
	passwordFlag := flag.String("password", "", "passphrase (prompted interactively when omitted)")
	flag.Parse()

	if flag.NArg() != 2 {
		usage()
		os.Exit(2)
	}
	command := flag.Arg(0)
	path := flag.Arg(1)

	if _, err := os.Stat(path); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	password := *passwordFlag
	if password == "" {
		var err error
		if password, err = promptPassword(command == "encrypt"); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}

	var vault storage.Vault
	var err error
	switch command {
	case "encrypt":
		err = vault.EncryptFile(path, password)
	case "decrypt":
		err = vault.DecryptFile(path, password)
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("%sed %s\n", command, path)
}

// promptPassword reads a passphrase without echo, with a confirmation pass
// when sealing so a typo cannot lock an export forever.
func promptPassword(confirm bool) (string, error) {
	fmt.Fprint(os.Stderr, "Passphrase: ")
	first, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("read passphrase: %w", err)
	}

	if confirm {
		fmt.Fprint(os.Stderr, "Confirm passphrase: ")
		second, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", fmt.Errorf("read passphrase: %w", err)
		}
		if string(first) != string(second) {
			return "", fmt.Errorf("passphrases do not match")
		}
	}

	return string(first), nil
}
