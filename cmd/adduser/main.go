// Command adduser registers a user against a running authkeeper server
// from the terminal. The password is read without echo.
package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"golang.org/x/term"
)

// readPassword is a test seam for term.ReadPassword.
var readPassword = term.ReadPassword

// getSimpleText prints a prompt to w and reads a single line of input from
// reader. The trailing newline is trimmed. If EOF occurs after some input
// was read, the partial line is returned.
func getSimpleText(reader *bufio.Reader, prompt string, w io.Writer) (string, error) {
	if _, err := fmt.Fprint(w, prompt+"\n> "); err != nil {
		return "", err
	}
	line, err := reader.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && len(line) > 0 {
			return strings.TrimSpace(line), nil
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// getPassword prints a password prompt to w and reads a password from the
// user's terminal without echo.
func getPassword(w io.Writer) ([]byte, error) {
	if _, err := fmt.Fprint(w, "Enter password: "); err != nil {
		return nil, err
	}
	pw, err := readPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(w)
	if err != nil {
		return nil, err
	}
	return pw, nil
}

func run(addr string, in *bufio.Reader, out io.Writer) error {

	username, err := getSimpleText(in, "Username", out)
	if err != nil {
		return err
	}
	email, err := getSimpleText(in, "Email", out)
	if err != nil {
		return err
	}
	phone, err := getSimpleText(in, "Contact phone", out)
	if err != nil {
		return err
	}
	password, err := getPassword(out)
	if err != nil {
		return err
	}

	body, err := json.Marshal(map[string]string{
		"username":      username,
		"email":         email,
		"contact_phone": phone,
		"password":      string(password),
	})
	if err != nil {
		return err
	}

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Post(addr+"/api/register", "application/json", bytes.NewReader(body))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("registration failed (%s): %s", resp.Status, strings.TrimSpace(string(respBody)))
	}

	fmt.Fprintf(out, "Registered: %s\n", strings.TrimSpace(string(respBody)))
	return nil
}

func main() {
	addr := flag.String("a", "http://localhost:8080", "server base URL")
	flag.Parse()

	if err := run(*addr, bufio.NewReader(os.Stdin), os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}
