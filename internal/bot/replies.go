package bot

import (
	"fmt"
	"strings"
	"time"

	postentity "github.com/blogramhq/blogram/internal/post/entity"
	"github.com/blogramhq/blogram/internal/stats"
)

const (
	startReply = `Welcome to the blogram bot!

I'm connected to the blogram backend and can help you with:

/start - show this welcome message
/help - get help information
/stats - get platform statistics
/profile <username> - link your Telegram account
/posts - get the latest published posts

Type any other message to get an echo reply.`

	helpReply = `Available commands:

/start - welcome message and bot introduction
/help - this help message
/stats - platform statistics
/profile <username> - link your Telegram account to a platform account
/posts - latest published posts

To link your account, register on the platform first, then run
/profile <your_username>.`

	profileUsageReply = `To link your Telegram account, use:

/profile <your_username>

Example: /profile john_doe`

	statsFallbackReply = "Sorry, couldn't fetch statistics at the moment. Please try again later."
	postsFallbackReply = "Sorry, couldn't fetch posts at the moment. Please try again later."
	noPostsReply       = "No posts available at the moment."
	linkFallbackReply  = "An error occurred while linking your account. Please try again later."
	unknownCmdReply    = "Unknown command. Use /help to see what I can do."
)

// previewLimit is the maximum rune count of a post body in the digest.
const previewLimit = 100

func formatStats(s stats.Snapshot) string {
	return fmt.Sprintf(`Platform statistics

Accounts: %d
Posts: %d
Published posts: %d
Linked Telegram accounts: %d`,
		s.TotalAccounts, s.TotalPosts, s.PublishedPosts, s.LinkedAccounts)
}

func formatLinked(username string) string {
	return fmt.Sprintf("Successfully linked to user: %s\n\nYour Telegram account is now connected to the platform.", username)
}

func formatNotFound(username string) string {
	return fmt.Sprintf("User '%s' not found in the system.\n\nPlease make sure you have an account on the platform first.", username)
}

func formatPosts(posts []*postentity.PublishedPost) string {
	var b strings.Builder
	b.WriteString("Latest posts:\n")
	for i, p := range posts {
		fmt.Fprintf(&b, "\n%d. %s\n", i+1, p.Title)
		fmt.Fprintf(&b, "   by %s on %s\n", p.AuthorUsername, p.CreatedAt.Format("2006-01-02 15:04"))
		fmt.Fprintf(&b, "   %s\n", preview(p.Content))
	}
	return b.String()
}

func preview(content string) string {
	runes := []rune(content)
	if len(runes) <= previewLimit {
		return content
	}
	return string(runes[:previewLimit]) + "..."
}

func formatEcho(text string, from Sender, at time.Time) string {
	name := strings.TrimSpace(from.FirstName + " " + from.LastName)
	return fmt.Sprintf(`You said: %q

Telegram user: %s (id %d)
Received at: %s

Use /help to see available commands.`,
		text, name, from.ID, at.Format(time.RFC3339))
}
