package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spec-kit/notes-service/pkg/client"
)

func main() {
	serverURL := flag.String("server", "http://localhost:3500", "base URL of the notes service")
	username := flag.String("u", "", "username (login)")
	password := flag.String("p", "", "password (login)")
	remember := flag.Bool("remember", false, "persist the session across runs")
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		usage()
		os.Exit(2)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	opts := []client.Option{}
	var store *client.SessionStore
	if *remember {
		path, err := sessionStorePath()
		if err != nil {
			fatal(err)
		}
		store, err = client.OpenSessionStore(path)
		if err != nil {
			fatal(err)
		}
		defer store.Close()
		opts = append(opts, client.WithSessionStore(store))
	}

	c, err := client.New(*serverURL, opts...)
	if err != nil {
		fatal(err)
	}

	command := args[0]
	if command != "login" && store != nil {
		// resume the persisted session before running an authenticated command
		if err := c.Resume(ctx); err != nil {
			fatal(fmt.Errorf("resume session: %w", err))
		}
	}

	switch command {
	case "login":
		if *username == "" || *password == "" {
			fatal(fmt.Errorf("login requires -u and -p"))
		}
		if err := c.Login(ctx, *username, *password); err != nil {
			fatal(err)
		}
		if claims, ok := c.CurrentClaims(); ok {
			fmt.Printf("logged in as %s (%s)\n", claims.Username, claims.Status())
		} else {
			fmt.Println("logged in")
		}
	case "whoami":
		claims, ok := c.CurrentClaims()
		if !ok {
			fatal(fmt.Errorf("not logged in"))
		}
		fmt.Printf("%s roles=%s\n", claims.Username, strings.Join(claims.Roles, ","))
	case "notes":
		notes, err := c.ListNotes(ctx)
		if err != nil {
			fatal(err)
		}
		for _, n := range notes {
			status := "open"
			if n.Completed {
				status = "done"
			}
			fmt.Printf("#%d\t%s\t%s\t%s\n", n.Ticket, status, n.Username, n.Title)
		}
	case "users":
		claims, _ := c.CurrentClaims()
		if !claims.HasAnyRole(client.RoleManager, client.RoleAdmin) {
			fatal(fmt.Errorf("users command requires Manager or Admin role"))
		}
		users, err := c.ListUsers(ctx)
		if err != nil {
			fatal(err)
		}
		for _, u := range users {
			fmt.Printf("%s\t%s\tactive=%v\n", u.Username, strings.Join(u.Roles, ","), u.Active)
		}
	case "refresh":
		if err := c.Refresh(ctx); err != nil {
			fatal(err)
		}
		fmt.Println("session refreshed")
	case "logout":
		if err := c.Logout(ctx); err != nil {
			fatal(err)
		}
		fmt.Println("logged out")
	default:
		usage()
		os.Exit(2)
	}
}

func sessionStorePath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".notesctl.db"), nil
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: notesctl [-server URL] [-remember] [-u USER -p PASS] <login|whoami|notes|users|refresh|logout>")
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, "notesctl:", err)
	os.Exit(1)
}
