package service

import (
	"bytes"
	"fmt"
	"html/template"
	"strconv"
	"strings"
	"time"

	"github.com/ds124wfegd/voucher-reminder/internal/entity"
)

const (
	defaultBuyerName = "Cher client"
	defaultShopName  = "la boutique"
)

// ReminderEmail holds everything the reminder mail shows.
type ReminderEmail struct {
	BuyerName       string
	ShopName        string
	VoucherCode     string
	VoucherValue    float64
	ExpiryDate      time.Time
	DaysUntilExpiry int
	Tier            entity.ReminderTier
	UsageConditions string
	AppURL          string
	SupportEmail    string
}

// NewReminderEmail fills display defaults for missing names and values.
func NewReminderEmail(v *entity.Voucher, buyer *entity.User, shop *entity.Establishment, d Decision) *ReminderEmail {
	e := &ReminderEmail{
		BuyerName:       defaultBuyerName,
		ShopName:        defaultShopName,
		VoucherCode:     v.Code,
		VoucherValue:    v.DisplayValue(),
		ExpiryDate:      v.ExpiryDate,
		DaysUntilExpiry: d.DaysUntilExpiry,
		Tier:            d.Tier,
	}

	if buyer != nil && strings.TrimSpace(buyer.Name) != "" {
		e.BuyerName = buyer.Name
	}
	if shop != nil {
		if strings.TrimSpace(shop.Name) != "" {
			e.ShopName = shop.Name
		}
		e.UsageConditions = shop.VoucherUsageConditions
	}

	return e
}

// Subject returns the mail subject line for the tier.
func (e *ReminderEmail) Subject() string {
	switch e.Tier {
	case entity.TierUrgent:
		return fmt.Sprintf("⚠️ URGENT : Votre bon cadeau expire %s !", e.when())
	case entity.TierThreeDays:
		return fmt.Sprintf("⏰ Rappel : Votre bon cadeau expire dans %d jours", e.DaysUntilExpiry)
	default:
		return fmt.Sprintf("📅 Information : Votre bon cadeau expire dans %d jours", e.DaysUntilExpiry)
	}
}

func (e *ReminderEmail) when() string {
	if e.DaysUntilExpiry <= 0 {
		return "aujourd'hui"
	}
	return "demain"
}

func (e *ReminderEmail) Urgent() bool {
	return e.Tier == entity.TierUrgent
}

func (e *ReminderEmail) UrgencyColor() string {
	switch e.Tier {
	case entity.TierUrgent:
		return "#ff0000"
	case entity.TierThreeDays:
		return "#ff6b35"
	default:
		return "#ff9500"
	}
}

func (e *ReminderEmail) UrgencyMessage() string {
	switch e.Tier {
	case entity.TierUrgent:
		if e.DaysUntilExpiry <= 0 {
			return "🔴 Ce bon expire AUJOURD'HUI !"
		}
		return "🟠 Ce bon expire DEMAIN !"
	case entity.TierThreeDays:
		return fmt.Sprintf("⏰ Plus que %d jours pour utiliser votre bon !", e.DaysUntilExpiry)
	default:
		return fmt.Sprintf("📅 Il vous reste %d jours pour profiter de votre bon cadeau.", e.DaysUntilExpiry)
	}
}

func (e *ReminderEmail) UrgentWarning() string {
	return "expire " + e.when()
}

func (e *ReminderEmail) Value() string {
	return strconv.FormatFloat(e.VoucherValue, 'f', -1, 64) + "€"
}

// Render produces the subject and HTML body, formatting the expiry date in loc.
func (e *ReminderEmail) Render(loc *time.Location) (*entity.MailContent, error) {
	if loc == nil {
		loc = time.UTC
	}

	var buf bytes.Buffer
	err := reminderTemplate.Execute(&buf, struct {
		*ReminderEmail
		Expiry string
	}{e, e.ExpiryDate.In(loc).Format("02/01/2006")})
	if err != nil {
		return nil, fmt.Errorf("failed to render reminder mail: %w", err)
	}

	return &entity.MailContent{Subject: e.Subject(), HTML: buf.String()}, nil
}

var reminderTemplate = template.Must(template.New("reminder").Parse(`<!DOCTYPE html>
<html lang="fr">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Rappel - Bon cadeau VenteMoi</title>
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333333; background-color: #f5f5f5; margin: 0; padding: 0; }
        .email-wrapper { width: 100%; background-color: #f5f5f5; padding: 40px 20px; }
        .email-container { max-width: 600px; margin: 0 auto; background-color: #ffffff; border-radius: 16px; overflow: hidden; }
        .header { background: linear-gradient(135deg, #ff9500 0%, #ff7a00 100%); padding: 40px 30px; text-align: center; }
        .urgency-banner { color: white; padding: 15px; text-align: center; font-size: 18px; font-weight: bold; }
        .content { padding: 40px 30px; background: #ffffff; }
        .voucher-box { background: #fff8e1; border: 2px dashed #ff9500; border-radius: 12px; padding: 25px; margin: 25px 0; text-align: center; }
        .voucher-code { font-size: 28px; font-weight: bold; color: #ff7a00; letter-spacing: 3px; margin: 10px 0; }
        .voucher-value { font-size: 36px; color: #ff7a00; font-weight: bold; margin: 15px 0; }
        .expiry-warning { background-color: #fff3cd; border: 1px solid #ffc107; border-radius: 8px; padding: 15px; margin: 20px 0; }
        .cta-button { display: inline-block; background: #ff7a00; color: white; padding: 15px 40px; text-decoration: none; border-radius: 25px; font-size: 18px; font-weight: bold; margin: 20px 0; }
        .footer { background: #f8f9fa; padding: 30px; text-align: center; border-top: 1px solid #eeeeee; color: #888888; font-size: 14px; }
        .tips { background: #e8f4fd; padding: 20px; border-radius: 8px; margin: 20px 0; }
    </style>
</head>
<body>
    <div class="email-wrapper">
        <div class="email-container">
            {{- if .Urgent}}
            <div class="urgency-banner" style="background-color: {{.UrgencyColor}};">{{.UrgencyMessage}}</div>
            {{- end}}

            <div class="header">
                <h1 style="color: white; margin: 0;">Vente Moi</h1>
                <p style="color: white; font-size: 18px; margin: 10px 0;">Rappel - Bon cadeau bientôt expiré</p>
            </div>

            <div class="content">
                <h2 style="color: #ff7a00;">Bonjour {{.BuyerName}},</h2>

                <p style="font-size: 16px;">{{.UrgencyMessage}}</p>

                <div class="voucher-box">
                    <p style="margin: 0; color: #666;">Votre bon cadeau chez</p>
                    <h3 style="margin: 10px 0; color: #333;">{{.ShopName}}</h3>
                    <div class="voucher-code">{{.VoucherCode}}</div>
                    <div class="voucher-value">{{.Value}}</div>
                    <p style="color: #666; margin: 10px 0;"><strong>Expire le : {{.Expiry}}</strong></p>
                </div>
                {{- if .Urgent}}

                <div class="expiry-warning">
                    <strong>⚠️ Attention :</strong> Ce bon cadeau {{.UrgentWarning}}.
                    Après cette date, il ne sera plus utilisable et la valeur sera perdue.
                </div>
                {{- end}}

                <div class="tips">
                    <h3 style="color: #ff7a00; margin-top: 0;">💡 Comment utiliser votre bon ?</h3>
                    <ol style="margin: 10px 0; padding-left: 20px;">
                        <li>Rendez-vous chez <strong>{{.ShopName}}</strong></li>
                        <li>Présentez le code <strong>{{.VoucherCode}}</strong> au moment du paiement</li>
                        <li>Le montant sera déduit de votre achat</li>
                    </ol>
                </div>
                {{- with .UsageConditions}}

                <div style="background: #fff9e6; border: 1px solid #ffca28; border-radius: 8px; padding: 15px; margin: 20px 0;">
                    <h3 style="color: #f57c00; margin-top: 0; margin-bottom: 10px;">⚠️ Conditions d'utilisation</h3>
                    <p style="color: #666; margin: 0; white-space: pre-line;">{{.}}</p>
                </div>
                {{- end}}

                <div style="text-align: center;">
                    <a href="{{.AppURL}}" class="cta-button">Voir mes bons cadeaux</a>
                </div>

                <p style="color: #666; font-size: 14px; margin-top: 30px;">
                    <em>Astuce : Planifiez votre visite chez {{.ShopName}} dans les prochains jours pour ne pas oublier d'utiliser votre bon !</em>
                </p>
            </div>

            <div class="footer">
                <p>© Vente Moi - Tous droits réservés</p>
                <p>
                    Vous recevez cet email car vous avez un bon cadeau qui arrive bientôt à expiration.<br>
                    Pour toute question, contactez <a href="mailto:{{.SupportEmail}}">{{.SupportEmail}}</a>
                </p>
            </div>
        </div>
    </div>
</body>
</html>
`))
