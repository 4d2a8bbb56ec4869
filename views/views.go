// Package views provides the default pages of a pubsite site as templ
// components. Sites replace any of them by setting their own components on
// pubsite.ViewFuncs.
package views

import "github.com/eringen/pubsite"

// Default returns the built-in views.
func Default() pubsite.ViewFuncs {
	return pubsite.ViewFuncs{
		Home:           Home,
		Post:           Post,
		Tag:            Tag,
		Author:         Author,
		AdminLogin:     AdminLogin,
		AdminDashboard: AdminDashboard,
		NotFound:       NotFound,
		ServerError:    ServerError,
	}
}
