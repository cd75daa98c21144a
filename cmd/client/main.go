// Package main implements the interactive MarketDesk client: a
// form-and-list shell over the server API for browsing, publishing,
// wanting and selling items.
package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/alukyanov/MarketDesk/internal/imagestore"
	"github.com/alukyanov/MarketDesk/internal/models"
)

// client talks to the server API and keeps the current session.
type client struct {
	baseURL string
	http    *http.Client
	token   string
	user    *models.User
	images  *imagestore.Store
	in      *bufio.Scanner
}

func main() {
	addr := flag.String("s", "http://localhost:8080", "server base URL")
	imageDir := flag.String("i", "item_img", "directory for item images")
	flag.Parse()

	images, err := imagestore.New(*imageDir)
	if err != nil {
		fmt.Fprintln(os.Stderr, "image store:", err)
		os.Exit(1)
	}

	c := &client{
		baseURL: strings.TrimRight(*addr, "/"),
		http:    &http.Client{},
		images:  images,
		in:      bufio.NewScanner(os.Stdin),
	}
	c.repl()
}

// repl runs the interactive shell loop.
func (c *client) repl() {
	for {
		fmt.Print("marketdesk> ")
		if !c.in.Scan() {
			return
		}
		args := strings.Fields(strings.TrimSpace(c.in.Text()))
		if len(args) == 0 {
			continue
		}
		switch args[0] {
		case "help":
			c.help()
		case "register":
			c.register()
		case "login":
			c.login()
		case "logout":
			c.logout()
		case "categories":
			c.categories()
		case "items":
			c.items("/api/items")
		case "mine":
			c.items("/api/items/mine")
		case "search":
			c.search(args[1:])
		case "new":
			c.newItem()
		case "edit":
			c.editItem(args[1:])
		case "rm":
			c.deleteItem(args[1:])
		case "want":
			c.want(args[1:])
		case "mywants":
			c.items("/api/wants/mine")
		case "received":
			c.received()
		case "sell":
			c.sell(args[1:])
		case "msgs":
			c.messages(args[1:])
		case "post":
			c.post(args[1:])
		case "users":
			c.users("/api/users")
		case "pending":
			c.users("/api/users/pending")
		case "approve":
			c.approve(args[1:])
		case "exit", "quit":
			return
		default:
			fmt.Println("Unknown command; type help")
		}
	}
}

func (c *client) help() {
	fmt.Println(`Commands:
  register | login | logout
  categories | items | mine | search <category> [keyword]
  new | edit <id> | rm <id>
  want <id> [offer] | mywants | received | sell <id> <buyer-id>
  msgs <id> | post <id> [reply-to-id] <text...>
  users | pending | approve <username>   (admin)
  help | exit`)
}

// prompt reads one line of input after printing the label.
func (c *client) prompt(label string) string {
	fmt.Print(label)
	if !c.in.Scan() {
		return ""
	}
	return strings.TrimSpace(c.in.Text())
}

// call performs one API request. out may be nil.
func (c *client) call(method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		msg, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%s", strings.TrimSpace(string(msg)))
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *client) register() {
	req := map[string]string{
		"username": c.prompt("Username: "),
		"password": c.prompt("Password: "),
		"address":  c.prompt("Address: "),
		"phone":    c.prompt("Phone: "),
		"email":    c.prompt("Email: "),
	}
	if err := c.call("POST", "/api/register", req, nil); err != nil {
		fmt.Println("Registration failed:", err)
		return
	}
	fmt.Println("Registered. An admin must approve the account before login.")
}

func (c *client) login() {
	req := map[string]string{
		"username": c.prompt("Username: "),
		"password": c.prompt("Password: "),
	}
	var resp struct {
		Token string       `json:"token"`
		User  *models.User `json:"user"`
	}
	if err := c.call("POST", "/api/login", req, &resp); err != nil {
		fmt.Println("Login failed:", err)
		return
	}
	c.token = resp.Token
	c.user = resp.User
	fmt.Printf("Welcome, %s (%s)\n", resp.User.Username, resp.User.Role)
}

func (c *client) logout() {
	if c.token != "" {
		_ = c.call("POST", "/api/logout", struct{}{}, nil)
	}
	c.token = ""
	c.user = nil
	fmt.Println("Logged out.")
}

func (c *client) categories() {
	var categories []models.Category
	if err := c.call("GET", "/api/categories", nil, &categories); err != nil {
		fmt.Println("Error:", err)
		return
	}
	for _, cat := range categories {
		fmt.Printf("%s  [%s]\n", cat.Name, strings.Join(cat.Attributes, ", "))
	}
}

func (c *client) items(path string) {
	var items []models.Item
	if err := c.call("GET", path, nil, &items); err != nil {
		fmt.Println("Error:", err)
		return
	}
	printItems(items)
}

func printItems(items []models.Item) {
	if len(items) == 0 {
		fmt.Println("No items.")
		return
	}
	for _, it := range items {
		status := it.Status
		if it.Status == models.ItemActive && it.WantCount > 0 {
			status = fmt.Sprintf("wanted by %d", it.WantCount)
		}
		fmt.Printf("#%d  %-20s %-12s %8.2f  %-10s %s\n",
			it.ID, it.Name, it.CategoryName, it.Price, status, it.OwnerUsername)
	}
}

func (c *client) search(args []string) {
	if len(args) == 0 {
		fmt.Println("Usage: search <category> [keyword]")
		return
	}
	path := "/api/items/search?category=" + args[0]
	if len(args) > 1 {
		path += "&q=" + strings.Join(args[1:], "+")
	}
	c.items(path)
}

func (c *client) newItem() {
	category := c.prompt("Category: ")

	// Fetch the category's attribute template to render its extra fields.
	var attrNames []string
	if err := c.call("GET", "/api/categories/"+category+"/attributes", nil, &attrNames); err != nil {
		fmt.Println("Error:", err)
		return
	}

	req := map[string]any{
		"name":        c.prompt("Name: "),
		"description": c.prompt("Description: "),
		"category":    category,
		"address":     c.prompt("Address: "),
	}
	price, err := strconv.ParseFloat(c.prompt("Price: "), 64)
	if err != nil || price < 0 {
		fmt.Println("Invalid price.")
		return
	}
	req["price"] = price
	req["can_bargain"] = strings.EqualFold(c.prompt("Accept bargains? (y/n): "), "y")

	attrs := make(map[string]string)
	for _, name := range attrNames {
		attrs[name] = c.prompt(name + ": ")
	}
	req["specific_attributes"] = attrs

	if src := c.prompt("Image file (empty to skip): "); src != "" {
		ref, err := c.images.CopyIn(src)
		if err != nil {
			fmt.Println("Image copy failed:", err)
			return
		}
		req["image_paths"] = []string{ref}
	}

	var resp struct {
		ID int64 `json:"id"`
	}
	if err := c.call("POST", "/api/items", req, &resp); err != nil {
		fmt.Println("Publish failed:", err)
		return
	}
	fmt.Printf("Published item #%d\n", resp.ID)
}

func (c *client) editItem(args []string) {
	if len(args) == 0 {
		fmt.Println("Usage: edit <id>")
		return
	}
	patch := make(map[string]any)
	if v := c.prompt("New name (empty to keep): "); v != "" {
		patch["name"] = v
	}
	if v := c.prompt("New description (empty to keep): "); v != "" {
		patch["description"] = v
	}
	if v := c.prompt("New price (empty to keep): "); v != "" {
		price, err := strconv.ParseFloat(v, 64)
		if err != nil || price < 0 {
			fmt.Println("Invalid price.")
			return
		}
		patch["price"] = price
	}
	if len(patch) == 0 {
		fmt.Println("Nothing to change.")
		return
	}
	if err := c.call("PATCH", "/api/items/"+args[0], patch, nil); err != nil {
		fmt.Println("Revise failed:", err)
		return
	}
	fmt.Println("Updated.")
}

func (c *client) deleteItem(args []string) {
	if len(args) == 0 {
		fmt.Println("Usage: rm <id>")
		return
	}
	if err := c.call("DELETE", "/api/items/"+args[0], nil, nil); err != nil {
		fmt.Println("Delete failed:", err)
		return
	}
	fmt.Println("Deleted.")
}

func (c *client) want(args []string) {
	if len(args) == 0 {
		fmt.Println("Usage: want <id> [offer]")
		return
	}
	offer := 0.0
	if len(args) > 1 {
		v, err := strconv.ParseFloat(args[1], 64)
		if err != nil || v < 0 {
			fmt.Println("Invalid offer.")
			return
		}
		offer = v
	}
	var resp struct {
		Added bool `json:"added"`
	}
	err := c.call("POST", "/api/items/"+args[0]+"/want", map[string]float64{"offer_price": offer}, &resp)
	if err != nil {
		fmt.Println("Want failed:", err)
		return
	}
	if resp.Added {
		fmt.Println("Intent recorded; the seller will see it.")
	} else {
		fmt.Println("You already wanted this item.")
	}
}

func (c *client) received() {
	var received []models.ReceivedWant
	if err := c.call("GET", "/api/wants/received", nil, &received); err != nil {
		fmt.Println("Error:", err)
		return
	}
	if len(received) == 0 {
		fmt.Println("No intents received.")
		return
	}
	for _, rw := range received {
		offer := "listed price"
		if rw.OfferPrice > 0 {
			offer = fmt.Sprintf("offers %.2f", rw.OfferPrice)
		}
		fmt.Printf("%-20s wanted by %-12s (%s, %s) — %s\n",
			rw.ItemName, rw.BuyerName, rw.Contact.Phone, rw.Contact.Address, offer)
	}
}

func (c *client) sell(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: sell <id> [buyer-id]")
		return
	}

	// Without a buyer, list the wanters to pick from.
	if len(args) == 1 {
		var wanters []models.User
		if err := c.call("GET", "/api/items/"+args[0]+"/wanters", nil, &wanters); err != nil {
			fmt.Println("Error:", err)
			return
		}
		if len(wanters) == 0 {
			fmt.Println("Nobody wants this item yet.")
			return
		}
		fmt.Println("Interested buyers:")
		for _, u := range wanters {
			fmt.Printf("  #%d  %s (%s)\n", u.ID, u.Username, u.Contact.Phone)
		}
		args = append(args, c.prompt("Buyer id: "))
	}

	buyerID, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil {
		fmt.Println("Invalid buyer id.")
		return
	}
	err = c.call("POST", "/api/items/"+args[0]+"/sold", map[string]int64{"buyer_id": buyerID}, nil)
	if err != nil {
		fmt.Println("Sale failed:", err)
		return
	}
	fmt.Println("Sold. The item is now final.")
}

func (c *client) messages(args []string) {
	if len(args) == 0 {
		fmt.Println("Usage: msgs <id>")
		return
	}
	var messages []models.Message
	if err := c.call("GET", "/api/items/"+args[0]+"/messages", nil, &messages); err != nil {
		fmt.Println("Error:", err)
		return
	}
	for _, m := range messages {
		prefix := ""
		if m.ReplyToID != nil {
			prefix = fmt.Sprintf("(re #%d) ", *m.ReplyToID)
		}
		fmt.Printf("#%d %s %s: %s%s\n",
			m.ID, m.CreatedAt.Format("2006-01-02 15:04"), m.SenderName, prefix, m.Content)
	}
}

func (c *client) post(args []string) {
	if len(args) < 2 {
		fmt.Println("Usage: post <id> [reply-to-id] <text...>")
		return
	}
	req := map[string]any{}
	rest := args[1:]
	if replyTo, err := strconv.ParseInt(rest[0], 10, 64); err == nil && len(rest) > 1 {
		req["reply_to"] = replyTo
		rest = rest[1:]
	}
	req["content"] = strings.Join(rest, " ")
	if err := c.call("POST", "/api/items/"+args[0]+"/messages", req, nil); err != nil {
		fmt.Println("Post failed:", err)
		return
	}
	fmt.Println("Posted.")
}

func (c *client) users(path string) {
	var users []models.User
	if err := c.call("GET", path, nil, &users); err != nil {
		fmt.Println("Error:", err)
		return
	}
	for _, u := range users {
		fmt.Printf("%-15s %-6s %-9s %s %s\n",
			u.Username, u.Role, u.Status, u.Contact.Phone, u.Contact.Address)
	}
}

func (c *client) approve(args []string) {
	if len(args) == 0 {
		fmt.Println("Usage: approve <username>")
		return
	}
	var resp struct {
		Status string `json:"status"`
	}
	if err := c.call("POST", "/api/users/"+args[0]+"/approve", struct{}{}, &resp); err != nil {
		fmt.Println("Approve failed:", err)
		return
	}
	fmt.Println("Status:", resp.Status)
}
