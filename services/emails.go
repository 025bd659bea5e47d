package services

import (
	"fmt"

	"coursehub/models"
)

// HTML bodies for the three notification emails. Styling matches the rest
// of the platform's transactional mail.

func submittedEmailBody(p *models.Payment, course *models.Course) string {
	return fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; background-color: #f9f9f9; }
        .header { background-color: #2196F3; color: white; padding: 20px; text-align: center; border-radius: 5px; }
        .content { background-color: white; padding: 20px; margin-top: 20px; border-radius: 5px; }
        .payment-info { background-color: #e3f2fd; padding: 15px; margin: 15px 0; border-left: 4px solid #2196F3; border-radius: 3px; }
        .info-item { margin: 8px 0; font-size: 14px; }
        .label { font-weight: bold; color: #1976D2; }
        .footer { text-align: center; margin-top: 20px; padding-top: 20px; border-top: 1px solid #ddd; font-size: 12px; color: #666; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h2>Payment Received</h2>
        </div>

        <div class="content">
            <p>Dear <strong>%s</strong>,</p>

            <p>We received your payment proof for <strong>%s</strong>. Our team will review it shortly and you will be notified of the outcome.</p>

            <div class="payment-info">
                <div class="info-item"><span class="label">Amount:</span> %.2f %s</div>
                <div class="info-item"><span class="label">Reference:</span> %s</div>
            </div>

            <p>No action is needed from you right now. Please do not submit the same payment twice; you can check the status of this submission at any time from your dashboard.</p>

            <div class="footer">
                <p>This is an automated email. Please do not reply to this address.</p>
            </div>
        </div>
    </div>
</body>
</html>
	`, p.StudentName, course.Title, p.Amount, p.Currency, referenceOf(p))
}

func adminAlertEmailBody(p *models.Payment, course *models.Course) string {
	return fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; background-color: #f9f9f9; }
        .header { background-color: #FF9800; color: white; padding: 20px; text-align: center; border-radius: 5px; }
        .content { background-color: white; padding: 20px; margin-top: 20px; border-radius: 5px; }
        .payment-info { background-color: #fff3e0; padding: 15px; margin: 15px 0; border-left: 4px solid #FF9800; border-radius: 3px; }
        .info-item { margin: 8px 0; font-size: 14px; }
        .label { font-weight: bold; color: #E65100; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h2>New Payment Awaiting Review</h2>
        </div>

        <div class="content">
            <p>A new payment has been submitted and is waiting in the review queue.</p>

            <div class="payment-info">
                <div class="info-item"><span class="label">Student:</span> %s (%s)</div>
                <div class="info-item"><span class="label">Course:</span> %s</div>
                <div class="info-item"><span class="label">Amount:</span> %.2f %s</div>
                <div class="info-item"><span class="label">Reference:</span> %s</div>
            </div>

            <p>Please review the attached proof of transfer in the admin dashboard and approve or reject the payment.</p>
        </div>
    </div>
</body>
</html>
	`, p.StudentName, p.StudentPhone, course.Title, p.Amount, p.Currency, referenceOf(p))
}

func approvedEmailBody(p *models.Payment, course *models.Course) string {
	return fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; background-color: #f9f9f9; }
        .header { background-color: #4CAF50; color: white; padding: 20px; text-align: center; border-radius: 5px; }
        .content { background-color: white; padding: 20px; margin-top: 20px; border-radius: 5px; }
        .payment-info { background-color: #e8f5e9; padding: 15px; margin: 15px 0; border-left: 4px solid #4CAF50; border-radius: 3px; }
        .info-item { margin: 8px 0; font-size: 14px; }
        .label { font-weight: bold; color: #2E7D32; }
        .footer { text-align: center; margin-top: 20px; padding-top: 20px; border-top: 1px solid #ddd; font-size: 12px; color: #666; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h2>Payment Approved</h2>
        </div>

        <div class="content">
            <p>Dear <strong>%s</strong>,</p>

            <p>Great news! Your payment for <strong>%s</strong> has been approved and you now have full access to the course content.</p>

            <div class="payment-info">
                <div class="info-item"><span class="label">Amount:</span> %.2f %s</div>
                <div class="info-item"><span class="label">Reference:</span> %s</div>
            </div>

            <p>Your receipt is attached to this email. Happy learning!</p>

            <div class="footer">
                <p>This is an automated email. Please do not reply to this address.</p>
            </div>
        </div>
    </div>
</body>
</html>
	`, p.StudentName, course.Title, p.Amount, p.Currency, referenceOf(p))
}

func rejectedEmailBody(p *models.Payment, course *models.Course) string {
	reason := "The submitted proof could not be verified."
	if p.RejectionReason != nil {
		reason = *p.RejectionReason
	}
	return fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; background-color: #f9f9f9; }
        .header { background-color: #F44336; color: white; padding: 20px; text-align: center; border-radius: 5px; }
        .content { background-color: white; padding: 20px; margin-top: 20px; border-radius: 5px; }
        .payment-info { background-color: #ffebee; padding: 15px; margin: 15px 0; border-left: 4px solid #F44336; border-radius: 3px; }
        .info-item { margin: 8px 0; font-size: 14px; }
        .label { font-weight: bold; color: #C62828; }
        .footer { text-align: center; margin-top: 20px; padding-top: 20px; border-top: 1px solid #ddd; font-size: 12px; color: #666; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h2>Payment Rejected</h2>
        </div>

        <div class="content">
            <p>Dear <strong>%s</strong>,</p>

            <p>Unfortunately your payment for <strong>%s</strong> could not be approved.</p>

            <div class="payment-info">
                <div class="info-item"><span class="label">Amount:</span> %.2f %s</div>
                <div class="info-item"><span class="label">Reference:</span> %s</div>
                <div class="info-item"><span class="label">Reason:</span> %s</div>
            </div>

            <p>You can submit a new payment with a corrected proof of transfer at any time.</p>

            <div class="footer">
                <p>This is an automated email. Please do not reply to this address.</p>
            </div>
        </div>
    </div>
</body>
</html>
	`, p.StudentName, course.Title, p.Amount, p.Currency, referenceOf(p), reason)
}
