package templates

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"
)

// ProfileView is a public profile row shown in lists and search results.
type ProfileView struct {
	UserID      int64
	Username    string
	FriendCode  string
	Requested   bool
	RequestID   int64
	FromRequest bool
}

// FriendsView carries the friends page data.
type FriendsView struct {
	Pending []ProfileView
	Friends []ProfileView
}

// FriendsPage renders pending requests and the friend list.
func FriendsPage(page PageContext, view FriendsView) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := fmt.Fprintf(w, "<h1>%s</h1>\n", esc(T(page.Loc, "web.friends.title"))); err != nil {
			return err
		}
		if len(view.Pending) > 0 {
			if _, err := fmt.Fprintf(w, "<h2>%s</h2>\n<ul class=\"profile-list\">\n", esc(T(page.Loc, "web.friends.pending_heading"))); err != nil {
				return err
			}
			for _, pending := range view.Pending {
				if _, err := fmt.Fprintf(w,
					"<li class=\"profile-row\">\n<a href=\"/profile/%s\">%s</a>\n"+
						"<form method=\"post\" action=\"/friends/accept/%d\"><button type=\"submit\">%s</button></form>\n</li>\n",
					esc(pending.Username), esc(pending.Username), pending.RequestID,
					esc(T(page.Loc, "web.friends.accept"))); err != nil {
					return err
				}
			}
			if _, err := io.WriteString(w, "</ul>\n"); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintf(w, "<h2>%s</h2>\n", esc(T(page.Loc, "web.friends.list_heading"))); err != nil {
			return err
		}
		if len(view.Friends) == 0 {
			_, err := fmt.Fprintf(w, "<p class=\"empty\">%s</p>\n", esc(T(page.Loc, "web.friends.empty")))
			return err
		}
		if _, err := io.WriteString(w, "<ul class=\"profile-list\">\n"); err != nil {
			return err
		}
		for _, friend := range view.Friends {
			code := ""
			if friend.FriendCode != "" {
				code = fmt.Sprintf(" <span class=\"friend-code\">%s</span>", esc(friend.FriendCode))
			}
			if _, err := fmt.Fprintf(w, "<li class=\"profile-row\"><a href=\"/profile/%s\">%s</a>%s</li>\n",
				esc(friend.Username), esc(friend.Username), code); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, "</ul>\n")
		return err
	})
}

// SearchView carries the user search page data.
type SearchView struct {
	Query   string
	Results []ProfileView
}

// UserSearchPage renders the public profile search.
func UserSearchPage(page PageContext, view SearchView) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := fmt.Fprintf(w,
			"<h1>%s</h1>\n<form method=\"get\" action=\"/users/search\" class=\"search-form\">\n"+
				"<input type=\"search\" name=\"q\" value=%q placeholder=%q>\n"+
				"<button type=\"submit\">%s</button>\n</form>\n",
			esc(T(page.Loc, "web.search.title")), esc(view.Query),
			esc(T(page.Loc, "web.search.placeholder")),
			esc(T(page.Loc, "web.search.submit"))); err != nil {
			return err
		}
		if view.Query == "" {
			return nil
		}
		if len(view.Results) == 0 {
			_, err := fmt.Fprintf(w, "<p class=\"empty\">%s</p>\n", esc(T(page.Loc, "web.search.empty")))
			return err
		}
		if _, err := io.WriteString(w, "<ul class=\"profile-list\">\n"); err != nil {
			return err
		}
		for _, result := range view.Results {
			if _, err := fmt.Fprintf(w, "<li class=\"profile-row\">\n<a href=\"/profile/%s\">%s</a>\n",
				esc(result.Username), esc(result.Username)); err != nil {
				return err
			}
			if result.Requested {
				if _, err := fmt.Fprintf(w, "<span class=\"hint\">%s</span>\n", esc(T(page.Loc, "web.search.requested"))); err != nil {
					return err
				}
			} else if page.Viewer.SignedIn {
				if _, err := fmt.Fprintf(w, "<form method=\"post\" action=\"/friends/send/%d\"><button type=\"submit\">%s</button></form>\n",
					result.UserID, esc(T(page.Loc, "web.search.add_friend"))); err != nil {
					return err
				}
			}
			if _, err := io.WriteString(w, "</li>\n"); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, "</ul>\n")
		return err
	})
}

// PublicProfileView carries another user's visible collection summary.
type PublicProfileView struct {
	Username   string
	FriendCode string
	Sets       []SetProgress
}

// PublicProfilePage renders another user's collection progress.
func PublicProfilePage(page PageContext, view PublicProfileView) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := fmt.Fprintf(w, "<h1>%s</h1>\n", esc(view.Username)); err != nil {
			return err
		}
		if view.FriendCode != "" {
			if _, err := fmt.Fprintf(w, "<p class=\"friend-code\">%s: %s</p>\n",
				esc(T(page.Loc, "web.account.friend_code")), esc(view.FriendCode)); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(w, "<ul class=\"set-list\">\n"); err != nil {
			return err
		}
		for _, set := range view.Sets {
			if _, err := fmt.Fprintf(w, "<li class=\"set-card\">\n<span class=\"set-name\">%s</span>\n", esc(set.Name)); err != nil {
				return err
			}
			if err := renderProgressBar(w, set.Collected, set.Total); err != nil {
				return err
			}
			if _, err := io.WriteString(w, "</li>\n"); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, "</ul>\n")
		return err
	})
}
