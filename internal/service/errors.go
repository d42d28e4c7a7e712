// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by the services. Handlers classify them with errors.Is.
var (
	ErrNotFound           = errors.New("not found")
	ErrForbidden          = errors.New("forbidden")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountDisabled    = errors.New("account disabled")
)

// User-facing messages.
const (
	MsgLoginRequired      = "Email e senha são obrigatórios"
	MsgInvalidCredentials = "Credenciais inválidas"
	MsgAccountDisabled    = "Conta desativada. Entre em contato com o administrador."
	MsgInternal           = "Erro interno do servidor. Tente novamente."

	MsgAllFieldsRequired = "Todos os campos são obrigatórios"
	MsgPasswordsMismatch = "As senhas não coincidem"
	MsgPasswordTooShort  = "A senha deve ter pelo menos 6 caracteres"
	MsgInvalidRole       = "Perfil inválido"
	MsgEmailInUse        = "Este email já está em uso"
	MsgAdminCreated      = "Administrador criado com sucesso!"
	MsgRegisterForbidden = "Você não tem permissão para criar novos administradores."

	MsgNewPasswordsMismatch   = "As novas senhas não coincidem"
	MsgNewPasswordTooShort    = "A nova senha deve ter pelo menos 6 caracteres"
	MsgWrongCurrentPassword   = "Senha atual incorreta"
	MsgBootstrapPasswordFixed = "Não é possível alterar a senha do administrador padrão nesta demonstração"
	MsgAdminNotFound          = "Administrador não encontrado"
	MsgPasswordChanged        = "Senha alterada com sucesso!"
	MsgCannotDisableSelf      = "Você não pode desativar a sua própria conta"
	MsgAdminActivated         = "Administrador ativado com sucesso!"
	MsgAdminDeactivated       = "Administrador desativado com sucesso!"

	MsgTouristPointRequired = "Campos obrigatórios: nome (PT), descrição (PT), endereço (PT), latitude, longitude e categoria"
	MsgEventRequired        = "Campos obrigatórios: título (PT), descrição (PT), data início, data fim e categoria"
	MsgInvalidCoordinates   = "Latitude e longitude devem ser números válidos"
	MsgInvalidDates         = "Datas inválidas"
	MsgEndBeforeStart       = "A data fim deve ser posterior à data início"
	MsgInvalidTicketURL     = "URL de ingresso inválida"
	MsgInvalidWebsite       = "Website inválido"

	MsgImagesOnly     = "Apenas imagens são permitidas (JPEG, JPG, PNG, GIF, WebP)"
	MsgImageTooLarge  = "Imagem muito grande. Tamanho máximo: 5MB"
	MsgTooManyImages  = "Máximo de 5 imagens por envio"
	MsgImageURLNeeded = "URL da imagem é obrigatória"
)

// ValidationError is a user-correctable input problem. Message is shown as is.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func validationError(msg string) error {
	return &ValidationError{Message: msg}
}

// UploadError reports the file that made a batch upload fail. Reason is set
// when the file itself was rejected; otherwise the storage write failed.
type UploadError struct {
	Filename string
	Reason   string
	Err      error
}

func (e *UploadError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("%s: %s", e.Reason, e.Filename)
	}
	return fmt.Sprintf("Erro ao fazer upload da imagem: %s", e.Filename)
}

func (e *UploadError) Unwrap() error {
	return e.Err
}

// IsValidation reports whether err is a *ValidationError and returns it.
func IsValidation(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
