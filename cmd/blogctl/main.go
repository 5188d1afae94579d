// blogctl is a small command-line client for a miniblog server. It keeps a
// session file under the user config directory so login survives between
// invocations.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"text/tabwriter"

	"golang.org/x/term"

	"miniblog/internal/client"
)

const defaultAddr = "http://localhost:8080"

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: blogctl <command> [options]

Commands:
  register  -username NAME -email ADDR   create an account (prompts for password)
  login     -email ADDR                  log in (prompts for password)
  logout                                 drop the stored session
  list      [-page N] [-limit N]         list your posts
  show      ID                           print one post
  create    -title T -text TEXT          create a post
  update    ID -title T -text TEXT       update a post
  delete    ID                           delete a post
  health                                 check the server

The server address comes from BLOG_ADDR (default %s).
`, defaultAddr)
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	addr := os.Getenv("BLOG_ADDR")
	if addr == "" {
		addr = defaultAddr
	}

	configDir, err := os.UserConfigDir()
	if err != nil {
		fatalf("resolving config dir: %v", err)
	}
	sess, err := client.LoadSession(filepath.Join(configDir, "blogctl", "session.json"))
	if err != nil {
		fatalf("loading session: %v", err)
	}

	c := client.New(addr, sess)
	ctx := context.Background()

	switch os.Args[1] {
	case "register":
		cmdRegister(ctx, c, os.Args[2:])
	case "login":
		cmdLogin(ctx, c, os.Args[2:])
	case "logout":
		if err := c.Logout(); err != nil {
			fatalf("logout: %v", err)
		}
		fmt.Println("Logged out.")
	case "list":
		cmdList(ctx, c, os.Args[2:])
	case "show":
		cmdShow(ctx, c, os.Args[2:])
	case "create":
		cmdCreate(ctx, c, os.Args[2:])
	case "update":
		cmdUpdate(ctx, c, os.Args[2:])
	case "delete":
		cmdDelete(ctx, c, os.Args[2:])
	case "health":
		msg, err := c.Health(ctx)
		if err != nil {
			fatalf("health: %v", err)
		}
		fmt.Println(msg)
	default:
		usage()
		os.Exit(2)
	}
}

func cmdRegister(ctx context.Context, c *client.Client, args []string) {
	fs := flag.NewFlagSet("register", flag.ExitOnError)
	username := fs.String("username", "", "display name")
	email := fs.String("email", "", "email address")
	fs.Parse(args)

	password := promptPassword()
	user, err := c.Register(ctx, *username, *email, password)
	if err != nil {
		fatalf("register: %v", err)
	}
	fmt.Printf("Registered and logged in as %s (id %d).\n", user.Username, user.ID)
}

func cmdLogin(ctx context.Context, c *client.Client, args []string) {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	email := fs.String("email", "", "email address")
	fs.Parse(args)

	password := promptPassword()
	user, err := c.Login(ctx, *email, password)
	if err != nil {
		fatalf("login: %v", err)
	}
	fmt.Printf("Logged in as %s (id %d).\n", user.Username, user.ID)
}

func cmdList(ctx context.Context, c *client.Client, args []string) {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	page := fs.Int("page", 1, "page number")
	limit := fs.Int("limit", 10, "posts per page")
	fs.Parse(args)

	resp, err := c.Posts(ctx, *page, *limit)
	if err != nil {
		fatalf("list: %v", err)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tCREATED\tTITLE")
	for _, p := range resp.Data {
		fmt.Fprintf(w, "%d\t%s\t%s\n", p.ID, p.CreatedAt.Format("2006-01-02 15:04"), p.Title)
	}
	w.Flush()
	fmt.Printf("Page %d of %d (%d posts total)\n", resp.Page, resp.TotalPages, resp.Total)
}

func cmdShow(ctx context.Context, c *client.Client, args []string) {
	id := parseID(args, "show")
	post, err := c.Post(ctx, id)
	if err != nil {
		fatalf("show: %v", err)
	}
	fmt.Printf("#%d %s (%s)\n\n%s\n", post.ID, post.Title, post.CreatedAt.Format("2006-01-02 15:04"), post.Text)
}

func cmdCreate(ctx context.Context, c *client.Client, args []string) {
	fs := flag.NewFlagSet("create", flag.ExitOnError)
	title := fs.String("title", "", "post title")
	text := fs.String("text", "", "post body")
	fs.Parse(args)

	post, err := c.CreatePost(ctx, *title, *text)
	if err != nil {
		fatalf("create: %v", err)
	}
	fmt.Printf("Created post %d.\n", post.ID)
}

func cmdUpdate(ctx context.Context, c *client.Client, args []string) {
	id := parseID(args, "update")
	fs := flag.NewFlagSet("update", flag.ExitOnError)
	title := fs.String("title", "", "post title")
	text := fs.String("text", "", "post body")
	fs.Parse(args[1:])

	post, err := c.UpdatePost(ctx, id, *title, *text)
	if err != nil {
		fatalf("update: %v", err)
	}
	fmt.Printf("Updated post %d.\n", post.ID)
}

func cmdDelete(ctx context.Context, c *client.Client, args []string) {
	id := parseID(args, "delete")
	if err := c.DeletePost(ctx, id); err != nil {
		fatalf("delete: %v", err)
	}
	fmt.Printf("Deleted post %d.\n", id)
}

func parseID(args []string, cmd string) int64 {
	if len(args) < 1 {
		fatalf("%s: post id required", cmd)
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		fatalf("%s: invalid post id %q", cmd, args[0])
	}
	return id
}

func promptPassword() string {
	fmt.Fprint(os.Stderr, "Password: ")
	pw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		fatalf("reading password: %v", err)
	}
	return string(pw)
}

func fatalf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
