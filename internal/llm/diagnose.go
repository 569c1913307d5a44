package llm

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"net"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// Category is the class an upstream failure is sorted into.
type Category string

// Upstream failure categories, in matching priority order.
const (
	CategoryConnection         Category = "connection_failure"
	CategoryAuthentication     Category = "authentication_failure"
	CategoryDeploymentNotFound Category = "deployment_not_found"
	CategoryRateLimited        Category = "rate_limited"
	CategoryTimeout            Category = "timeout"
	CategoryUnclassified       Category = "unclassified"
)

// Diagnosis is a classified upstream failure.
type Diagnosis struct {
	Category  Category
	ErrorType string
	Message   string
}

type rule struct {
	category Category
	patterns []string
	render   func(d Diagnosis, s Settings) []string
}

// rules is evaluated top to bottom and the first match wins. Matching relies
// on the wording of provider and transport errors and needs revisiting when
// the SDK changes its messages.
var rules = []rule{
	{CategoryConnection, []string{"connection error"}, renderConnection},
	{CategoryAuthentication, []string{"401", "authentication"}, renderAuthentication},
	{CategoryDeploymentNotFound, []string{"404", "not found"}, renderDeploymentNotFound},
	{CategoryRateLimited, []string{"429", "rate limit"}, renderRateLimited},
	{CategoryTimeout, []string{"timeout"}, renderTimeout},
}

// Classify sorts err into a Category by case-insensitive substring match over
// its signature.
func Classify(err error) Diagnosis {
	d := Diagnosis{
		Category:  CategoryUnclassified,
		ErrorType: errorType(err),
		Message:   err.Error(),
	}
	sig := strings.ToLower(signature(err))
	for _, r := range rules {
		for _, p := range r.patterns {
			if strings.Contains(sig, p) {
				d.Category = r.category
				return d
			}
		}
	}
	return d
}

// Lines renders the user-facing diagnostic text, one stream write per line.
func (d Diagnosis) Lines(s Settings) []string {
	for _, r := range rules {
		if r.category == d.Category {
			return r.render(d, s)
		}
	}
	return renderUnclassified(d, s)
}

// Heading is the first line of the rendered diagnostic.
func (d Diagnosis) Heading(s Settings) string {
	return d.Lines(s)[0]
}

// signature is the error text followed by tags derived from the error's type,
// so that transport failures classify the same way as provider messages do.
func signature(err error) string {
	parts := []string{err.Error()}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode != 0 {
		parts = append(parts, fmt.Sprintf("status code: %d", apiErr.HTTPStatusCode))
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode != 0 {
		parts = append(parts, fmt.Sprintf("status code: %d", reqErr.HTTPStatusCode))
	}

	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		parts = append(parts, "timeout")
	case errors.As(err, &netErr) && netErr.Timeout():
		parts = append(parts, "timeout")
	case isConnectionFailure(err):
		parts = append(parts, "Connection error")
	}

	return strings.Join(parts, " | ")
}

func isConnectionFailure(err error) bool {
	var (
		opErr     *net.OpError
		dnsErr    *net.DNSError
		verifyErr *tls.CertificateVerificationError
		authErr   x509.UnknownAuthorityError
		hostErr   x509.HostnameError
	)
	return errors.As(err, &dnsErr) ||
		errors.As(err, &opErr) ||
		errors.As(err, &verifyErr) ||
		errors.As(err, &authErr) ||
		errors.As(err, &hostErr)
}

func errorType(err error) string {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return "APIError"
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return "RequestError"
	}
	t := fmt.Sprintf("%T", err)
	t = strings.TrimPrefix(t, "*")
	if i := strings.LastIndex(t, "."); i >= 0 {
		t = t[i+1:]
	}
	return t
}

func renderConnection(_ Diagnosis, s Settings) []string {
	return []string{
		"🔌 **Connection Error Detected**\n\n",
		"Dr. CodeBot is having trouble connecting to the Azure OpenAI service. This could be due to:\n\n",
		"• **Network connectivity issues** - Check your internet connection\n",
		"• **Firewall or proxy blocking** - Ensure Azure endpoints are accessible\n",
		"• **DNS resolution problems** - Verify the endpoint URL is correct\n",
		"• **SSL/TLS certificate issues** - Check if certificates are valid\n\n",
		"**Current Configuration:**\n",
		fmt.Sprintf("• Endpoint: `%s`\n", s.Endpoint),
		fmt.Sprintf("• Deployment: `%s`\n", s.Deployment),
		fmt.Sprintf("• API Version: `%s`\n\n", s.APIVersion),
		"💡 **Troubleshooting Steps:**\n",
		"1. Probe the upstream directly: `relay -probe`\n",
		"2. Check Azure OpenAI service status\n",
		"3. Verify your network connection\n",
		"4. Test the endpoint in a browser or with curl",
	}
}

func renderAuthentication(_ Diagnosis, s Settings) []string {
	return []string{
		"🔐 **Authentication Error**\n\n",
		"Dr. CodeBot's credentials appear to be invalid. Please check:\n\n",
		"• Your API key is correct and hasn't expired\n",
		"• The API key has proper permissions for the deployment\n",
		"• No extra spaces or characters in the API key\n\n",
		fmt.Sprintf("API Key length: %d characters", s.APIKeyLength),
	}
}

func renderDeploymentNotFound(_ Diagnosis, s Settings) []string {
	return []string{
		"🤖 **Deployment Not Found**\n\n",
		fmt.Sprintf("The deployment '%s' doesn't seem to exist. Please verify:\n\n", s.Deployment),
		"• The deployment name is spelled correctly\n",
		"• The deployment exists in your Azure OpenAI resource\n",
		"• The deployment is in the 'Succeeded' state\n\n",
		"You can check your deployments in the Azure Portal under your OpenAI resource.",
	}
}

func renderRateLimited(_ Diagnosis, _ Settings) []string {
	return []string{
		"⏰ **Rate Limit Exceeded**\n\n",
		"Dr. CodeBot is being rate-limited. Please:\n\n",
		"• Wait a moment before trying again\n",
		"• Check your quota limits in Azure Portal\n",
		"• Consider upgrading your pricing tier if needed",
	}
}

func renderTimeout(_ Diagnosis, _ Settings) []string {
	return []string{
		"⏱️ **Request Timeout**\n\n",
		"The request to Azure OpenAI timed out. This might be due to:\n\n",
		"• High load on the Azure OpenAI service\n",
		"• Network latency issues\n",
		"• Large request taking too long to process\n\n",
		"Try again in a moment with a shorter code snippet.",
	}
}

func renderUnclassified(d Diagnosis, _ Settings) []string {
	return []string{
		"❌ **Unexpected Error**\n\n",
		"Dr. CodeBot encountered an unexpected error:\n\n",
		fmt.Sprintf("**Error Type:** %s\n", d.ErrorType),
		fmt.Sprintf("**Error Message:** %s\n\n", d.Message),
		"Please check the server logs for more detailed information, or inspect the relay configuration:\n",
		"`GET /debug`",
	}
}
