// server/internal/api/handlers/facility_handler.go
package handlers

import (
	"context"
	"net/http"

	"bookmyhall-api-server/internal/models"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// FacilityHandler phục vụ phần đọc công khai cho trang đặt chỗ.
type FacilityHandler struct {
	DB *mongo.Database
}

// ListFacilities lấy danh sách facility đang mở đặt chỗ, kèm điểm đánh giá.
func (h *FacilityHandler) ListFacilities(c *gin.Context) {
	filter := bson.M{"available": true}
	if kind := c.Query("kind"); kind != "" {
		filter["kind"] = kind
	}

	cursor, err := h.DB.Collection("facilities").Find(context.Background(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to query facilities"})
		return
	}
	defer cursor.Close(context.Background())

	var facilities []models.Facility
	if err = cursor.All(context.Background(), &facilities); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to decode facilities"})
		return
	}

	if facilities == nil {
		facilities = []models.Facility{}
	}

	ratings, err := facilityRatings(h.DB)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to aggregate ratings"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "facilities": facilities, "ratings": ratings})
}

// GetFacilityByID lấy thông tin một facility theo facilityID.
func (h *FacilityHandler) GetFacilityByID(c *gin.Context) {
	facilityID := c.Param("id")

	var facility models.Facility
	err := h.DB.Collection("facilities").FindOne(context.Background(), bson.M{"facilityID": facilityID}).Decode(&facility)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Facility not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to retrieve facility"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "facility": facility})
}
