// server/internal/socket/hub.go
package socket

import (
	"log"
	"sync"

	"github.com/gorilla/websocket"
)

// Hub quản lý tất cả các client WebSocket.
// Coordinator, director và user kết nối để nhận sự kiện đặt chỗ realtime.
type Hub struct {
	// clients là một map để lưu trữ các kết nối, key là email đăng nhập.
	clients map[string]*websocket.Conn
	// mu là một Mutex để đảm bảo an toàn khi truy cập map clients từ nhiều goroutine.
	mu sync.RWMutex
}

// NewHub tạo một Hub mới.
func NewHub() *Hub {
	return &Hub{
		clients: make(map[string]*websocket.Conn),
	}
}

// Register thêm một client mới vào Hub.
func (h *Hub) Register(email string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[email] = conn
	log.Printf("WebSocket client registered: %s", email)
}

// Unregister xóa một client khỏi Hub.
func (h *Hub) Unregister(email string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[email]; ok {
		delete(h.clients, email)
		log.Printf("WebSocket client unregistered: %s", email)
	}
}

// Send gửi một tin nhắn đến một client cụ thể.
func (h *Hub) Send(email string, message []byte) error {
	h.mu.RLock()
	defer h.mu.RUnlock()

	conn, ok := h.clients[email]
	if !ok {
		// Không tìm thấy client (có thể đã offline), không coi đây là lỗi nghiêm trọng.
		return nil
	}

	// Gửi tin nhắn JSON
	return conn.WriteMessage(websocket.TextMessage, message)
}
