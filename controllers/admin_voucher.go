package controllers

import (
	"log"
	"net/http"
	"strconv"
	"time"

	"voucher-redemption-api/config"
	"voucher-redemption-api/models"
	"voucher-redemption-api/services"
	"voucher-redemption-api/utils"

	"github.com/gin-gonic/gin"
)

type generateCodesRequest struct {
	NumCodes       int     `json:"num_codes" binding:"required,min=1,max=100000"`
	CodeLength     int     `json:"code_length"`
	BaseAmount     float64 `json:"base_amount" binding:"required,gt=0"`
	ExpirationDate string  `json:"expiration_date" binding:"required"`
	Affiliate      string  `json:"affiliate"`
	Campaign       string  `json:"campaign"`
	Channel        string  `json:"channel"`
}

// GenerateVoucherCodes creates a new batch of codes and returns them in
// user-facing form for distribution.
func GenerateVoucherCodes(c *gin.Context) {
	var req generateCodesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	expiration, err := time.Parse("2006-01-02", req.ExpirationDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid expiration_date, want YYYY-MM-DD"})
		return
	}

	codeLength := req.CodeLength
	if codeLength == 0 {
		codeLength = services.DefaultCodeLength
	}

	codes, err := voucherSvc.Generate(req.NumCodes, codeLength, services.DefaultCodeAlphabet)
	if err != nil {
		log.Printf("Code generation failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate codes"})
		return
	}

	username, _ := c.Get("username")
	createdBy, _ := username.(string)
	batch := models.VoucherCodeBatch{
		CreatedBy:      createdBy,
		CodeLength:     codeLength,
		Alphabet:       services.DefaultCodeAlphabet,
		BaseAmount:     req.BaseAmount,
		ExpirationDate: expiration,
		Affiliate:      req.Affiliate,
		Campaign:       req.Campaign,
		Channel:        req.Channel,
	}
	if err := voucherSvc.CreateBatch(&batch, codes); err != nil {
		log.Printf("Batch creation failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create batch"})
		return
	}

	formatted := make([]string, 0, len(codes))
	for _, code := range codes {
		formatted = append(formatted, utils.ToUserFacingCode(code))
	}

	c.JSON(http.StatusCreated, gin.H{
		"batch": batch,
		"codes": formatted,
	})
}

// ImportVoucherCodes uploads a line-delimited code list into a new batch.
func ImportVoucherCodes(c *gin.Context) {
	baseAmount := 0.0
	if v := c.PostForm("base_amount"); v != "" {
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid base_amount"})
			return
		}
		baseAmount = parsed
	}
	expirationStr := c.PostForm("expiration_date")
	if expirationStr == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "expiration_date is required"})
		return
	}
	expiration, err := time.Parse("2006-01-02", expirationStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid expiration_date, want YYYY-MM-DD"})
		return
	}

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

	username, _ := c.Get("username")
	createdBy, _ := username.(string)
	batch := models.VoucherCodeBatch{
		CreatedBy:      createdBy,
		BaseAmount:     baseAmount,
		ExpirationDate: expiration,
		Affiliate:      c.PostForm("affiliate"),
		Campaign:       c.PostForm("campaign"),
		Channel:        c.PostForm("channel"),
	}

	valid, invalid, err := voucherSvc.ImportCodes(file, &batch)
	if err != nil {
		log.Printf("Code import failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to import codes"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"batch":   batch,
		"valid":   valid,
		"invalid": invalid,
	})
}

type invalidateCodesRequest struct {
	Codes []string `json:"codes" binding:"required,min=1"`
}

// InvalidateVoucherCodes deactivates an explicit list of codes.
func InvalidateVoucherCodes(c *gin.Context) {
	var req invalidateCodesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	codes := make([]string, 0, len(req.Codes))
	for _, code := range req.Codes {
		codes = append(codes, utils.FromUserFacingCode(code))
	}

	matched, err := voucherSvc.InvalidateByCodeList(codes)
	if err != nil {
		log.Printf("Code invalidation failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to invalidate codes"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"matched":  matched,
		"provided": len(codes),
	})
}

type invalidateCampaignRequest struct {
	Affiliate string `json:"affiliate" binding:"required"`
	Campaign  string `json:"campaign" binding:"required"`
}

// InvalidateCampaignCodes deactivates every code whose batch carries the
// given affiliate and campaign labels.
func InvalidateCampaignCodes(c *gin.Context) {
	var req invalidateCampaignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	matched, err := voucherSvc.InvalidateByCampaign(req.Affiliate, req.Campaign)
	if err != nil {
		log.Printf("Campaign invalidation failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to invalidate codes"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"matched": matched})
}

// ListVoucherCodeBatches returns all batches, newest first.
func ListVoucherCodeBatches(c *gin.Context) {
	var batches []models.VoucherCodeBatch
	if err := config.DB.Order("created DESC").Find(&batches).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch batches"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"batches": batches,
		"total":   len(batches),
	})
}
