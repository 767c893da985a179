package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/example/ec-admin-console/internal/audit"
	"github.com/example/ec-admin-console/internal/auth"
	"github.com/example/ec-admin-console/internal/readmodel"
	"github.com/example/ec-admin-console/internal/validate"
	"github.com/example/ec-admin-console/internal/view"
)

const passwordChangedMessage = "Password changed successfully! Please log in again."

type settingsData struct {
	Account        readmodel.PayoutAccount
	NewEmail       string
	PasswordStatus view.Status
	EmailStatus    view.Status
	AccountStatus  view.Status
}

// Settings renders the password, email and payout account forms. The
// account preload is best effort.
func (h *Handlers) Settings(w http.ResponseWriter, r *http.Request) {
	data := &settingsData{}
	if !h.loadAccount(w, r, data) {
		return
	}
	h.renderSettings(w, r, http.StatusOK, data)
}

// loadAccount fills data.Account from the API. It returns false only when
// the admin was evicted.
func (h *Handlers) loadAccount(w http.ResponseWriter, r *http.Request, data *settingsData) bool {
	account, err := h.client.PayoutAccount(r.Context())
	if err != nil {
		if h.evictOn401(w, r, err) {
			return false
		}
		h.logger.DebugContext(r.Context(), "payout account unavailable", "error", err)
		return true
	}
	data.Account = *account
	return true
}

func (h *Handlers) renderSettings(w http.ResponseWriter, r *http.Request, status int, data *settingsData) {
	p, ok := h.newPage(w, r, "Settings", "settings")
	if !ok {
		return
	}
	p.Data = data
	h.render(w, r, status, "settings.html", p)
}

// ChangePassword checks the new password locally, then asks the API to
// change it. On success the credential is dropped and the admin logs in
// again.
func (h *Handlers) ChangePassword(w http.ResponseWriter, r *http.Request) {
	current := r.FormValue("currentPassword")
	next := r.FormValue("newPassword")
	confirm := r.FormValue("confirmPassword")

	err := auth.CheckNewPassword(next, confirm)
	if err == nil {
		err = h.mutate(r.Context(), "settings.password", "", []string{current, next, confirm}, func(ctx context.Context) error {
			return h.client.ChangePassword(ctx, current, next, confirm)
		})
		if err == nil {
			h.record(r.Context(), audit.SettingsPasswordChange, "", nil)
			h.sessions.Evict(w, r, &view.Flash{Kind: view.FlashSuccess, Message: passwordChangedMessage})
			return
		}
		if h.evictOn401(w, r, err) {
			return
		}
		h.logFailure(r, "change password", err)
	}

	data := &settingsData{PasswordStatus: view.Failed(userMessage(err))}
	if !h.loadAccount(w, r, data) {
		return
	}
	h.renderSettings(w, r, httpStatus(err), data)
}

func (h *Handlers) ChangeEmail(w http.ResponseWriter, r *http.Request) {
	newEmail := strings.TrimSpace(r.FormValue("newEmail"))

	err := validate.Email(newEmail)
	if err == nil {
		err = h.mutate(r.Context(), "settings.email", "", []string{newEmail}, func(ctx context.Context) error {
			return h.client.ChangeEmail(ctx, newEmail)
		})
		if err == nil {
			h.record(r.Context(), audit.SettingsEmailChange, "", nil)
			h.flash(w, r, view.FlashSuccess, "Email updated successfully!")
			h.redirect(w, r, "/settings")
			return
		}
		if h.evictOn401(w, r, err) {
			return
		}
		h.logFailure(r, "change email", err)
	}

	data := &settingsData{NewEmail: newEmail, EmailStatus: view.Failed(userMessage(err))}
	if !h.loadAccount(w, r, data) {
		return
	}
	h.renderSettings(w, r, httpStatus(err), data)
}

// UpdateAccount saves the payout account. The redirect re-fetches it, so the
// page shows the values the API actually stored.
func (h *Handlers) UpdateAccount(w http.ResponseWriter, r *http.Request) {
	account := readmodel.PayoutAccount{
		AccountNumber: strings.TrimSpace(r.FormValue("accountNumber")),
		BankName:      strings.TrimSpace(r.FormValue("bankName")),
		AccountName:   strings.TrimSpace(r.FormValue("accountName")),
	}

	err := validate.Account(account)
	if err == nil {
		err = h.mutate(r.Context(), "settings.account", "", []string{account.AccountNumber, account.BankName, account.AccountName}, func(ctx context.Context) error {
			return h.client.UpdatePayoutAccount(ctx, account)
		})
		if err == nil {
			h.record(r.Context(), audit.SettingsAccountChange, "", map[string]string{"bankName": account.BankName})
			h.flash(w, r, view.FlashSuccess, "Account details updated successfully!")
			h.redirect(w, r, "/settings")
			return
		}
		if h.evictOn401(w, r, err) {
			return
		}
		h.logFailure(r, "update payout account", err)
	}

	// the submitted values stay in the form so the admin can fix them
	data := &settingsData{Account: account, AccountStatus: view.Failed(userMessage(err))}
	h.renderSettings(w, r, httpStatus(err), data)
}
