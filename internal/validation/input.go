package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Константы валидации
const (
	MinUsernameLength           = 3
	MaxUsernameLength           = 30
	MinOrderTitleLength         = 3
	MaxOrderTitleLength         = 200
	MaxRequirementsLength       = 5000
	MinListingTitleLength       = 3
	MaxListingTitleLength       = 200
	MaxListingDescriptionLength = 5000
	MinReasonLength             = 3
	MaxReasonLength             = 1000
	MaxCommentLength            = 2000
	MaxProofFilesCount          = 20
	MinAmount                   = 0.0
	MaxAmount                   = 100000000.0 // 100 миллионов
)

// ValidateLength проверяет длину строки.
func ValidateLength(fieldName, value string, min, max int) error {
	length := utf8.RuneCountInString(value)
	if min > 0 && length < min {
		return fmt.Errorf("%s должен быть не менее %d символов", fieldName, min)
	}
	if max > 0 && length > max {
		return fmt.Errorf("%s должен быть не более %d символов", fieldName, max)
	}
	return nil
}

// ValidateEmail проверяет формат email.
func ValidateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("email обязателен")
	}

	email = strings.TrimSpace(email)
	email = strings.ToLower(email)

	// Базовая проверка формата
	if !strings.Contains(email, "@") {
		return fmt.Errorf("email должен содержать символ @")
	}

	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return fmt.Errorf("некорректный формат email")
	}

	localPart := parts[0]
	domainPart := parts[1]

	if len(localPart) == 0 || len(localPart) > 64 {
		return fmt.Errorf("локальная часть email должна быть от 1 до 64 символов")
	}

	if len(domainPart) == 0 || len(domainPart) > 255 {
		return fmt.Errorf("доменная часть email должна быть от 1 до 255 символов")
	}

	if !strings.Contains(domainPart, ".") {
		return fmt.Errorf("доменная часть email должна содержать точку")
	}

	// Проверка на валидные символы в локальной части
	emailRegex := regexp.MustCompile(`^[a-z0-9._+-]+$`)
	if !emailRegex.MatchString(localPart) {
		return fmt.Errorf("локальная часть email содержит недопустимые символы")
	}

	// Проверка на валидные символы в доменной части
	domainRegex := regexp.MustCompile(`^[a-z0-9.-]+\.[a-z]{2,}$`)
	if !domainRegex.MatchString(domainPart) {
		return fmt.Errorf("доменная часть email имеет некорректный формат")
	}

	return nil
}

// ValidateUsername проверяет имя пользователя.
func ValidateUsername(username string) error {
	if username == "" {
		return fmt.Errorf("имя пользователя обязательно")
	}

	username = strings.TrimSpace(username)

	// Проверка длины
	if err := ValidateLength("имя пользователя", username, MinUsernameLength, MaxUsernameLength); err != nil {
		return err
	}

	// Проверка на допустимые символы (только буквы, цифры и подчеркивание)
	usernameRegex := regexp.MustCompile(`^[a-zA-Z0-9_]+$`)
	if !usernameRegex.MatchString(username) {
		return fmt.Errorf("имя пользователя может содержать только буквы, цифры и подчеркивание")
	}

	// Проверка, что не начинается с цифры
	if len(username) > 0 && unicode.IsDigit(rune(username[0])) {
		return fmt.Errorf("имя пользователя не может начинаться с цифры")
	}

	return nil
}

// ValidateOrderTitle проверяет заголовок заказа.
func ValidateOrderTitle(title string) error {
	if title == "" {
		return fmt.Errorf("заголовок заказа обязателен")
	}

	title = strings.TrimSpace(title)

	if err := ValidateLength("заголовок заказа", title, MinOrderTitleLength, MaxOrderTitleLength); err != nil {
		return err
	}

	return nil
}

// ValidateRequirements проверяет пожелания заказчика к изготовлению.
func ValidateRequirements(requirements *string) error {
	if requirements != nil && *requirements != "" {
		req := strings.TrimSpace(*requirements)
		if err := ValidateLength("требования к заказу", req, 0, MaxRequirementsLength); err != nil {
			return err
		}
	}
	return nil
}

// ValidateListingTitle проверяет название объявления.
func ValidateListingTitle(title string) error {
	if title == "" {
		return fmt.Errorf("название объявления обязательно")
	}

	title = strings.TrimSpace(title)

	if err := ValidateLength("название объявления", title, MinListingTitleLength, MaxListingTitleLength); err != nil {
		return err
	}

	return nil
}

// ValidateListingDescription проверяет описание объявления.
func ValidateListingDescription(description *string) error {
	if description != nil && *description != "" {
		desc := strings.TrimSpace(*description)
		if err := ValidateLength("описание объявления", desc, 0, MaxListingDescriptionLength); err != nil {
			return err
		}
	}
	return nil
}

// ValidateAmount проверяет денежную сумму.
func ValidateAmount(amount float64) error {
	if amount <= MinAmount {
		return fmt.Errorf("сумма должна быть положительной")
	}
	if amount > MaxAmount {
		return fmt.Errorf("сумма не может превышать %.0f", MaxAmount)
	}
	return nil
}

// ValidateReason проверяет причину отмены или возврата.
func ValidateReason(reason string) error {
	if strings.TrimSpace(reason) == "" {
		return fmt.Errorf("причина обязательна")
	}

	reason = strings.TrimSpace(reason)

	if err := ValidateLength("причина", reason, MinReasonLength, MaxReasonLength); err != nil {
		return err
	}

	return nil
}

// ValidateComment проверяет комментарий к макету.
func ValidateComment(comment *string) error {
	if comment != nil && *comment != "" {
		c := strings.TrimSpace(*comment)
		if err := ValidateLength("комментарий", c, 0, MaxCommentLength); err != nil {
			return err
		}
	}
	return nil
}

// ValidateProofFiles проверяет список файловых ключей макета.
func ValidateProofFiles(fileKeys []string) error {
	if len(fileKeys) > MaxProofFilesCount {
		return fmt.Errorf("количество файлов не может превышать %d", MaxProofFilesCount)
	}

	for _, key := range fileKeys {
		if strings.TrimSpace(key) == "" {
			return fmt.Errorf("ключ файла не может быть пустым")
		}
	}

	return nil
}
