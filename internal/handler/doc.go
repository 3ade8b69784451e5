// Package handler implements the HTTP surface of the status board: the HTML
// page, its JSON view, the manual refresh action and the middleware shared by
// every route.
package handler
