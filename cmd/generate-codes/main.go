package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"voucher-redemption-api/config"
	"voucher-redemption-api/models"
	"voucher-redemption-api/services"
	"voucher-redemption-api/utils"

	"github.com/joho/godotenv"
)

// One-shot CLI for generating a voucher code batch without the API. Codes
// are printed to stdout in user-facing form, one per line.
func main() {
	numCodes := flag.Int("n", 0, "number of codes to generate")
	codeLength := flag.Int("length", services.DefaultCodeLength, "code length")
	baseAmount := flag.Float64("amount", 0, "dollar amount per code")
	expiration := flag.String("expires", "", "expiration date (YYYY-MM-DD)")
	affiliate := flag.String("affiliate", "", "affiliate label")
	campaign := flag.String("campaign", "", "campaign label")
	channel := flag.String("channel", "", "channel label")
	createdBy := flag.String("by", "cli", "staff username to record on the batch")
	flag.Parse()

	if *numCodes < 1 {
		log.Fatal("-n must be at least 1")
	}
	if *baseAmount <= 0 {
		log.Fatal("-amount must be positive")
	}
	expirationDate, err := time.Parse("2006-01-02", *expiration)
	if err != nil {
		log.Fatal("-expires must be YYYY-MM-DD")
	}

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}
	config.InitDB()

	svc := services.NewVoucherService(config.DB)
	codes, err := svc.Generate(*numCodes, *codeLength, services.DefaultCodeAlphabet)
	if err != nil {
		log.Fatal("Failed to generate codes:", err)
	}

	batch := models.VoucherCodeBatch{
		CreatedBy:      *createdBy,
		CodeLength:     *codeLength,
		Alphabet:       services.DefaultCodeAlphabet,
		BaseAmount:     *baseAmount,
		ExpirationDate: expirationDate,
		Affiliate:      *affiliate,
		Campaign:       *campaign,
		Channel:        *channel,
	}
	if err := svc.CreateBatch(&batch, codes); err != nil {
		log.Fatal("Failed to create batch:", err)
	}

	log.Printf("Created batch %d with %d codes", batch.BatchID, len(codes))
	for _, code := range codes {
		fmt.Println(utils.ToUserFacingCode(code))
	}
}
