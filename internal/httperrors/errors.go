// Copyright (c) 2025 Cardline
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package httperrors turns raw network failures into messages a person can
// act on. Commands hand it the error and a short activity description
// ("fetching your cards"); it prints the friendly explanation and returns a
// wrapped error for exit-code handling.
package httperrors

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
	"syscall"

	"github.com/pterm/pterm"
)

// FormatNetworkError prints a user-friendly explanation for a failed request
// and returns the error wrapped for the caller.
func FormatNetworkError(err error, activity string) error {
	if err == nil {
		return nil
	}
	present(err, activity)
	return fmt.Errorf("network error: %w", err)
}

func present(err error, activity string) {
	switch {
	case isTimeout(err):
		showTimeout(activity)
	case isDNS(err):
		showDNS(activity)
	case isRefused(err):
		showRefused(activity)
	case isTLS(err):
		showTLS(activity)
	default:
		showGeneric(activity, err.Error())
	}
}

func isTimeout(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "timeout") || strings.Contains(s, "deadline exceeded")
}

func isDNS(err error) bool {
	var dnsErr *net.DNSError
	return errors.As(err, &dnsErr)
}

func isRefused(err error) bool {
	var opErr *net.OpError
	if errors.As(err, &opErr) && errors.Is(opErr.Err, syscall.ECONNREFUSED) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "connection refused")
}

func isTLS(err error) bool {
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "tls") ||
		strings.Contains(s, "certificate") ||
		strings.Contains(s, "handshake")
}

func showTimeout(activity string) {
	pterm.Printf("⏱️  Connection timeout while %s\n", activity)
	pterm.Println()
	pterm.Println("The Cardline service took too long to respond. This could mean:")
	pterm.Println("  • Slow internet connection")
	pterm.Println("  • The service is under heavy load")
	pterm.Println()
	pterm.Println("Please try again in a few moments.")
	pterm.Println()
}

func showDNS(activity string) {
	pterm.Printf("🌐 Cannot resolve server address while %s\n", activity)
	pterm.Println()
	pterm.Println("Unable to look up the Cardline service. Please check:")
	pterm.Println("  • Your internet connection is working")
	pterm.Println("  • DNS settings are correct")
	pterm.Println()
}

func showRefused(activity string) {
	pterm.Printf("🚫 Connection refused while %s\n", activity)
	pterm.Println()
	pterm.Println("The server is not accepting connections. This could mean:")
	pterm.Println("  • The service is temporarily down")
	pterm.Println("  • A firewall is blocking the connection")
	pterm.Println()
	pterm.Println("Please try again later.")
	pterm.Println()
}

func showTLS(activity string) {
	pterm.Printf("🔒 Secure connection failed while %s\n", activity)
	pterm.Println()
	pterm.Println("Cannot establish a secure HTTPS connection. Try:")
	pterm.Println("  • Check your system date and time")
	pterm.Println("  • Verify network proxy settings")
	pterm.Println()
}

func showGeneric(activity string, details string) {
	pterm.Printf("❌ Cannot reach the Cardline service while %s\n", activity)
	pterm.Println()
	pterm.Println("Please check your internet connection and firewall settings.")
	pterm.Println()

	if details != "" {
		if len(details) > 100 {
			details = details[:100] + "..."
		}
		pterm.Debug.Printf("Technical details: %s\n", details)
		pterm.Println()
	}
}

// HostFromURL extracts the hostname from a URL for use in messages, falling
// back to "server" when the URL does not parse.
func HostFromURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "server"
	}
	return u.Host
}
