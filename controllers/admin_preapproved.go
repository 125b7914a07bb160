package controllers

import (
	"log"
	"net/http"

	"voucher-redemption-api/config"
	"voucher-redemption-api/models"

	"github.com/gin-gonic/gin"
)

// ImportPreapprovedAddresses uploads the CSV list of addresses exempt from
// the address dedup rule.
func ImportPreapprovedAddresses(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file uploaded"})
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to open file"})
		return
	}
	defer file.Close()

	valid, invalid, err := exportSvc.ImportPreapprovedAddresses(file)
	if err != nil {
		log.Printf("Preapproved address import failed: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"valid":   valid,
		"invalid": invalid,
	})
}

// ListPreapprovedAddresses returns every preapproved address.
func ListPreapprovedAddresses(c *gin.Context) {
	var addrs []models.PreapprovedAddress
	if err := config.DB.Order("addr1 ASC").Find(&addrs).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch addresses"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"addresses": addrs,
		"total":     len(addrs),
	})
}
