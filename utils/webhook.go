package utils

import (
	"fmt"
	"log"
	"time"

	"lms/config"
	"lms/models"

	"github.com/go-resty/resty/v2"
)

var webhookClient = resty.New().
	SetTimeout(10 * time.Second).
	SetRetryCount(2).
	SetRetryWaitTime(time.Second)

// SyncProspect forwards a new prospect to the configured CRM webhook.
func SyncProspect(prospect models.Prospect) error {
	url := config.AppConfig.ProspectWebhookURL
	if url == "" {
		return nil
	}

	resp, err := webhookClient.R().
		SetHeader("Content-Type", "application/json").
		SetBody(map[string]interface{}{
			"id":           prospect.ID,
			"name":         prospect.Name,
			"email":        prospect.Email,
			"phone":        prospect.Phone,
			"formation_id": prospect.FormationID,
			"message":      prospect.Message,
			"created_at":   prospect.CreatedAt,
		}).
		Post(url)
	if err != nil {
		return err
	}
	if resp.IsError() {
		return fmt.Errorf("webhook responded %d: %s", resp.StatusCode(), resp.String())
	}
	return nil
}

// SyncProspectAsync runs SyncProspect in the background.
func SyncProspectAsync(prospect models.Prospect) {
	go func() {
		if err := SyncProspect(prospect); err != nil {
			log.Printf("[WEBHOOK] Error syncing prospect %d: %v", prospect.ID, err)
			return
		}
		log.Printf("[WEBHOOK] Prospect %d synced", prospect.ID)
	}()
}
