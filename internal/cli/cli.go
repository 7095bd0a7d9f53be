package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"clck.local/internal/app/shortlink"
	"clck.local/internal/app/shortlink/notify"
	"clck.local/internal/platform/browser"
)

// CLI 是交互式命令外壳：读一行、派发、打一行人话。
//
// 设计原因：
// - 命令注册成表（名字/用法/描述/处理函数），help 直接从表渲染，
//   新命令只加一行注册，不用再改派发逻辑
// - 领域错误只在这一层被翻译成用户可读文案；service 层只认哨兵错误
type CLI struct {
	links       *shortlink.Service
	users       *shortlink.UserService
	notifier    notify.Notifier
	launcher    browser.Launcher
	shortDomain string

	in     io.Reader
	out    io.Writer
	errOut io.Writer

	currentUser shortlink.User
	commands    []command
}

type command struct {
	name        string
	usage       string
	description string
	handler     func(args string)
}

func New(
	links *shortlink.Service,
	users *shortlink.UserService,
	notifier notify.Notifier,
	launcher browser.Launcher,
	shortDomain string,
	in io.Reader,
	out, errOut io.Writer,
) *CLI {
	c := &CLI{
		links:       links,
		users:       users,
		notifier:    notifier,
		launcher:    launcher,
		shortDomain: shortDomain,
		in:          in,
		out:         out,
		errOut:      errOut,
	}
	c.register("create", "create <url> [limit]", "Create a short link (optional click limit)", c.handleCreate)
	c.register("use", "use <code>", "Open the original URL in the browser", c.handleUse)
	c.register("list", "list", "List all your links", func(string) { c.handleList() })
	c.register("info", "info <code>", "Show link metadata", c.handleInfo)
	c.register("delete", "delete <code>", "Delete a link", c.handleDelete)
	c.register("help", "help", "Show this command table", func(string) { c.printHelp() })
	return c
}

func (c *CLI) register(name, usage, description string, handler func(args string)) {
	c.commands = append(c.commands, command{name: name, usage: usage, description: description, handler: handler})
}

// Run 执行 REPL 直到 exit、输入关闭或 ctx 取消。
func (c *CLI) Run(ctx context.Context) {
	c.printWelcome()

	c.currentUser = c.users.CreateUser()
	fmt.Fprintf(c.out, "Your user ID: %s\n", c.currentUser.ID)
	fmt.Fprintln(c.out, "Keep this ID if you want to reach your links in future sessions.")

	scanner := bufio.NewScanner(c.in)
	for {
		select {
		case <-ctx.Done():
			c.printFarewell()
			return
		default:
		}

		fmt.Fprint(c.out, "\n> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		name, args := splitCommand(line)
		if name == "exit" {
			break
		}

		cmd, ok := c.lookup(name)
		if !ok {
			fmt.Fprintf(c.out, "Unknown command: %s\n", name)
			fmt.Fprintln(c.out, "Type 'help' to see available commands.")
			continue
		}
		cmd.handler(args)
	}

	c.printFarewell()
}

// CurrentUser 返回本会话的匿名身份。
func (c *CLI) CurrentUser() shortlink.User {
	return c.currentUser
}

func (c *CLI) lookup(name string) (command, bool) {
	for _, cmd := range c.commands {
		if cmd.name == name {
			return cmd, true
		}
	}
	return command{}, false
}

// splitCommand 把一行输入拆成命令名和剩余参数。
func splitCommand(line string) (name, args string) {
	parts := strings.SplitN(line, " ", 2)
	name = parts[0]
	if len(parts) > 1 {
		args = strings.TrimSpace(parts[1])
	}
	return name, args
}

func (c *CLI) handleCreate(args string) {
	if args == "" {
		fmt.Fprintln(c.out, "Usage: create <url> [limit]")
		fmt.Fprintln(c.out, "Example: create https://example.com 20")
		return
	}

	fields := strings.Fields(args)
	url := fields[0]

	var (
		link shortlink.Link
		err  error
	)
	if len(fields) > 1 {
		limit, convErr := strconv.Atoi(fields[1])
		if convErr != nil {
			fmt.Fprintf(c.out, "Invalid click limit: %s\n", fields[1])
			return
		}
		if limit <= 0 {
			fmt.Fprintln(c.out, "Click limit must be positive")
			return
		}
		link, err = c.links.CreateWithLimit(url, c.currentUser.ID, limit)
	} else {
		link, err = c.links.Create(url, c.currentUser.ID)
	}
	if err != nil {
		fmt.Fprintf(c.errOut, "Could not create link: %s\n", errText(err))
		return
	}

	fmt.Fprintln(c.out, "\n+ Short link created!")
	fmt.Fprintf(c.out, "  Short URL:    %s/%s\n", c.shortDomain, link.ShortCode)
	fmt.Fprintf(c.out, "  Original URL: %s\n", link.OriginalURL)
	fmt.Fprintf(c.out, "  Click limit:  %d\n", link.ClickLimit)
	fmt.Fprintf(c.out, "  Expires:      %s\n", link.ExpiresAt.Format("2006-01-02 15:04:05"))
}

func (c *CLI) handleUse(args string) {
	if args == "" {
		fmt.Fprintln(c.out, "Usage: use <code>")
		return
	}
	code := strings.TrimSpace(args)

	url, err := c.links.Resolve(code)
	if err != nil {
		fmt.Fprintf(c.errOut, "Link unavailable: %s\n", errText(err))
		return
	}

	fmt.Fprintf(c.out, "\n+ Redirecting to: %s\n", url)
	if err := c.launcher.Open(url); err != nil {
		fmt.Fprintf(c.errOut, "Could not open browser: %s\n", err)
	}
}

func (c *CLI) handleList() {
	links := c.links.List(c.currentUser.ID)
	if len(links) == 0 {
		fmt.Fprintln(c.out, "\nYou have no links yet.")
		fmt.Fprintln(c.out, "Use 'create <url>' to make one.")
		return
	}

	fmt.Fprintln(c.out, "\nYour links:")
	now := time.Now()
	for _, link := range links {
		status := "inactive"
		if link.IsActive(now) {
			status = "active"
		}
		fmt.Fprintf(c.out, "\n  Short code:   %s\n", link.ShortCode)
		fmt.Fprintf(c.out, "  Original URL: %s\n", link.OriginalURL)
		fmt.Fprintf(c.out, "  Clicks:       %d/%d (%s)\n", link.ClickCount, link.ClickLimit, status)
		fmt.Fprintf(c.out, "  Expires:      %s\n", link.ExpiresAt.Format("2006-01-02 15:04:05"))
	}
	fmt.Fprintf(c.out, "\nTotal: %d link(s)\n", len(links))
}

func (c *CLI) handleInfo(args string) {
	if args == "" {
		fmt.Fprintln(c.out, "Usage: info <code>")
		return
	}
	code := strings.TrimSpace(args)

	link, err := c.links.Info(code)
	if err != nil {
		fmt.Fprintf(c.errOut, "Link not found: %s\n", code)
		return
	}
	c.notifier.LinkInfo(link, c.shortDomain)
}

func (c *CLI) handleDelete(args string) {
	if args == "" {
		fmt.Fprintln(c.out, "Usage: delete <code>")
		return
	}
	code := strings.TrimSpace(args)

	if err := c.links.Delete(code, c.currentUser.ID); err != nil {
		fmt.Fprintf(c.errOut, "Could not delete link: %s\n", errText(err))
		return
	}
	fmt.Fprintf(c.out, "\n+ Link deleted: %s\n", code)
}

func (c *CLI) printWelcome() {
	fmt.Fprintln(c.out, "URL shortener - console edition")
	fmt.Fprintln(c.out, "Type 'help' to see available commands.")
}

func (c *CLI) printHelp() {
	fmt.Fprintln(c.out, "\nAvailable commands:")
	for _, cmd := range c.commands {
		fmt.Fprintf(c.out, "  %-22s %s\n", cmd.usage, cmd.description)
	}
	fmt.Fprintf(c.out, "  %-22s %s\n", "exit", "Quit")
	fmt.Fprintln(c.out, "\nExamples:")
	fmt.Fprintln(c.out, "  create https://example.com")
	fmt.Fprintln(c.out, "  create https://example.com 20")
	fmt.Fprintln(c.out, "  use 3DZHeG")
}

func (c *CLI) printFarewell() {
	fmt.Fprintln(c.out, "\nThanks for using the URL shortener!")
	fmt.Fprintf(c.out, "Your user ID: %s\n", c.currentUser.ID)
	fmt.Fprintln(c.out, "Goodbye!")
}

// errText 把领域哨兵错误翻译成一行用户可读文案。
func errText(err error) string {
	switch {
	case errors.Is(err, shortlink.ErrInvalidURL):
		return "URL must be non-empty, at most 2000 characters and start with http:// or https://"
	case errors.Is(err, shortlink.ErrNotFound):
		return "no link with that short code"
	case errors.Is(err, shortlink.ErrForbidden):
		return "you are not the owner of this link"
	case errors.Is(err, shortlink.ErrExpired):
		return "the link has expired"
	case errors.Is(err, shortlink.ErrLimitReached):
		return "the click limit has been reached"
	case errors.Is(err, shortlink.ErrInactive):
		return "the link is no longer active"
	case errors.Is(err, shortlink.ErrCodeExhausted):
		return "could not allocate a short code, try again"
	default:
		return err.Error()
	}
}
