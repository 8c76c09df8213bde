package main

import (
	"bufio"
	"chat-sync/domain/chat"
	"chat-sync/projection"
	"chat-sync/runtime"
	"chat-sync/services"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/gookit/color"
)

const snapshotTimeout = 3 * time.Second

// console reads commands line by line. Plain lines are sent to the
// joined group, lines starting with a slash are commands.
type console struct {
	service services.IChatService

	mu     sync.Mutex
	out    io.Writer
	group  string
	joined *runtime.Subscription[chat.Message]
	wg     sync.WaitGroup
}

func newConsole(service services.IChatService, out io.Writer) *console {
	return &console{service: service, out: out}
}

func (c *console) run(ctx context.Context, in io.Reader) error {
	c.printf("%s\n", color.Gray.Sprint("/groups /create <name> /join <name> /leave /whoami /quit"))
	lines := make(chan string)
	scanErr := make(chan error, 1)
	go func() {
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
		scanErr <- scanner.Err()
		close(lines)
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				return <-scanErr
			}
			if quit := c.handle(ctx, line); quit {
				return nil
			}
		}
	}
}

// handle executes one line and reports whether the session is over.
func (c *console) handle(ctx context.Context, line string) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return false
	}
	if !strings.HasPrefix(line, "/") {
		c.send(ctx, line)
		return false
	}

	command, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)
	switch command {
	case "/quit":
		return true
	case "/groups":
		c.listGroups(ctx)
	case "/create":
		if _, err := c.service.CreateGroup(ctx, arg); err != nil {
			c.fail(err)
			return false
		}
		c.printf("%s\n", color.Green.Sprintf("group %s ready", arg))
	case "/join":
		c.join(arg)
	case "/leave":
		c.leave()
	case "/whoami":
		if userID, ok := c.service.CurrentUserID(); ok {
			c.printf("%s\n", userID)
		} else {
			c.printf("%s\n", color.Yellow.Sprint("signed out"))
		}
	default:
		c.printf("%s\n", color.Yellow.Sprintf("unknown command %s", command))
	}
	return false
}

func (c *console) listGroups(ctx context.Context) {
	sub, err := c.service.Groups()
	if err != nil {
		c.fail(err)
		return
	}
	defer sub.Close()

	ctx, cancel := context.WithTimeout(ctx, snapshotTimeout)
	defer cancel()
	snapshot, err := sub.Next(ctx)
	if err != nil {
		c.fail(err)
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	renderGroups(c.out, snapshot.Items())
}

// join swaps the followed group. Messages are printed as snapshots arrive.
func (c *console) join(group string) {
	sub, err := c.service.Messages(group)
	if err != nil {
		c.fail(err)
		return
	}
	c.leave()

	c.mu.Lock()
	c.group = group
	c.joined = sub
	c.mu.Unlock()
	c.printf("%s\n", color.Green.Sprintf("joined %s", group))

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		c.follow(sub)
	}()
}

func (c *console) follow(sub *runtime.Subscription[chat.Message]) {
	me, _ := c.service.CurrentUserID()
	timeline := projection.NewTimeline(me)
	for snapshot := range sub.Snapshots() {
		fresh := timeline.Consume(snapshot.Items())
		c.mu.Lock()
		for _, message := range fresh {
			renderMessage(c.out, message, timeline.Mine(message))
		}
		c.mu.Unlock()
	}
	if err := sub.Err(); err != nil {
		c.fail(err)
	}
}

func (c *console) leave() {
	c.mu.Lock()
	sub := c.joined
	c.joined = nil
	c.group = ""
	c.mu.Unlock()
	if sub != nil {
		sub.Close()
		c.wg.Wait()
	}
}

func (c *console) send(ctx context.Context, text string) {
	c.mu.Lock()
	group := c.group
	c.mu.Unlock()
	if group == "" {
		c.printf("%s\n", color.Yellow.Sprint("join a group first"))
		return
	}
	if _, err := c.service.Send(ctx, group, text); err != nil {
		c.fail(err)
	}
}

func (c *console) fail(err error) {
	c.printf("%s\n", color.Red.Sprintf("error: %v", err))
}

func (c *console) printf(format string, args ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.out, format, args...)
}
