package service

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/ignatzorin/masterskaya-backend/internal/models"
	"github.com/ignatzorin/masterskaya-backend/internal/repository"
)

// seedPassword единый пароль всех сгенерированных аккаунтов.
const seedPassword = "Password123"

// SeedService генерирует демонстрационные данные для разработки: пользователей,
// объявления мастеров и заказы на разных этапах жизненного цикла. Заказы
// проводятся через те же репозитории, что и боевые запросы, поэтому таймлайн,
// макеты и удержания в демо-базе выглядят как настоящие.
type SeedService struct {
	userRepo    *repository.UserRepository
	listingRepo *repository.ListingRepository
	orderRepo   *repository.OrderRepository
	proofRepo   *repository.ProofRepository
	refundRepo  *repository.RefundRepository
	feeRate     float64
}

// NewSeedService создаёт новый сервис для генерации данных.
func NewSeedService(
	userRepo *repository.UserRepository,
	listingRepo *repository.ListingRepository,
	orderRepo *repository.OrderRepository,
	proofRepo *repository.ProofRepository,
	refundRepo *repository.RefundRepository,
	feeRate float64,
) *SeedService {
	return &SeedService{
		userRepo:    userRepo,
		listingRepo: listingRepo,
		orderRepo:   orderRepo,
		proofRepo:   proofRepo,
		refundRepo:  refundRepo,
		feeRate:     feeRate,
	}
}

// SeedAccount содержит учётные данные сгенерированного пользователя для входа.
type SeedAccount struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// SeedResult описывает итог генерации данных.
type SeedResult struct {
	Accounts []SeedAccount
}

// SeedData генерирует пользователей, объявления и заказы.
func (s *SeedService) SeedData(ctx context.Context, numUsers int, numOrders int) (*SeedResult, error) {
	rand.Seed(time.Now().UnixNano())

	customers, providers, err := s.generateUsers(ctx, numUsers)
	if err != nil {
		return nil, fmt.Errorf("seed service: failed to generate users: %w", err)
	}

	listings, err := s.generateListings(ctx, providers)
	if err != nil {
		return nil, fmt.Errorf("seed service: failed to generate listings: %w", err)
	}

	if err := s.generateOrders(ctx, customers, listings, numOrders); err != nil {
		return nil, fmt.Errorf("seed service: failed to generate orders: %w", err)
	}

	// В ответ попадают несколько аккаунтов каждой роли для ручной проверки.
	result := &SeedResult{}
	for i := 0; i < len(customers) && i < 3; i++ {
		result.Accounts = append(result.Accounts, SeedAccount{
			Email:    customers[i].Email,
			Username: customers[i].Username,
			Password: seedPassword,
			Role:     customers[i].Role,
		})
	}
	for i := 0; i < len(providers) && i < 3; i++ {
		result.Accounts = append(result.Accounts, SeedAccount{
			Email:    providers[i].Email,
			Username: providers[i].Username,
			Password: seedPassword,
			Role:     providers[i].Role,
		})
	}

	return result, nil
}

// generateUsers создаёт заказчиков и мастеров.
func (s *SeedService) generateUsers(ctx context.Context, count int) ([]*models.User, []*models.User, error) {
	firstNames := []string{
		"Александр", "Дмитрий", "Максим", "Сергей", "Андрей", "Алексей", "Артём", "Илья",
		"Иван", "Михаил", "Никита", "Роман", "Егор", "Павел", "Владимир", "Константин",
		"Анна", "Мария", "Елена", "Ольга", "Татьяна", "Наталья", "Ирина", "Светлана",
		"Екатерина", "Юлия", "Анастасия", "Дарья", "Виктория", "Полина", "София", "Алиса",
	}
	lastNames := []string{
		"Иванов", "Петров", "Смирнов", "Козлов", "Соколов", "Попов", "Лебедев", "Новиков",
		"Морозов", "Волков", "Соловьёв", "Васильев", "Зайцев", "Павлов", "Семёнов", "Голубев",
		"Виноградов", "Богданов", "Воробьёв", "Фёдоров", "Михайлов", "Белов", "Тарасов", "Беляев",
	}
	domains := []string{"gmail.com", "yandex.ru", "mail.ru", "outlook.com"}

	var customers []*models.User
	var providers []*models.User
	passwordHash, _ := bcrypt.GenerateFromPassword([]byte(seedPassword), bcrypt.DefaultCost)

	for i := 0; i < count; i++ {
		firstName := firstNames[rand.Intn(len(firstNames))]
		lastName := lastNames[rand.Intn(len(lastNames))]
		username := fmt.Sprintf("%s_%s_%d", firstName, lastName, rand.Intn(10000))
		email := fmt.Sprintf("%s.%s.%d@%s",
			toLatin(firstName), toLatin(lastName), rand.Intn(10000), domains[rand.Intn(len(domains))])

		role := models.RoleProvider
		if i%2 == 0 {
			role = models.RoleCustomer
		}

		user := &models.User{
			Email:        email,
			Username:     username,
			PasswordHash: string(passwordHash),
			Role:         role,
			IsActive:     true,
		}

		if err := s.userRepo.Create(ctx, user); err != nil {
			return nil, nil, fmt.Errorf("failed to create user: %w", err)
		}

		if role == models.RoleCustomer {
			customers = append(customers, user)
		} else {
			providers = append(providers, user)
		}
	}

	if len(customers) == 0 || len(providers) == 0 {
		return nil, nil, fmt.Errorf("need at least one customer and one provider, got %d/%d", len(customers), len(providers))
	}

	return customers, providers, nil
}

// generateListings создаёт по несколько объявлений на каждого мастера.
func (s *SeedService) generateListings(ctx context.Context, providers []*models.User) ([]*models.Listing, error) {
	titles := []string{
		"Гравировка на металле по вашему эскизу",
		"Печать логотипа на кружках и термосах",
		"Табличка из латуни с именной гравировкой",
		"Кожаный ремень ручной работы",
		"Деревянная шкатулка с резьбой на заказ",
		"Керамическая посуда с ручной росписью",
		"Вышивка логотипа на текстиле",
		"Печать фотографий на холсте",
		"Кованый подсвечник по индивидуальному проекту",
		"Именной нож с гравировкой на клинке",
		"Витраж по вашему рисунку",
		"Фирменные значки и медали из латуни",
		"Портрет по фотографии маслом",
		"Свадебные приглашения ручной работы",
		"Мебельный щит с фрезеровкой по чертежу",
		"Украшения из серебра по эскизу заказчика",
	}
	descriptions := []string{
		"Работаю с латунью, нержавеющей сталью и алюминием. Перед изготовлением согласовываю макет, срок изготовления от трёх дней.",
		"Использую профессиональное оборудование и стойкие краски. Возможна печать тиражом от одной штуки.",
		"Материалы закупаю у проверенных поставщиков. По запросу пришлю фотографии готовых работ.",
		"Каждое изделие делаю вручную и под конкретного заказчика. Перед началом работы обсуждаю детали в консультации.",
		"Более десяти лет опыта. Отправляю заказы транспортными компаниями по всей стране.",
		"Принимаю сложные индивидуальные проекты. Сначала согласовываем эскиз, потом приступаю к изготовлению.",
	}

	var listings []*models.Listing
	for _, provider := range providers {
		numListings := rand.Intn(3) + 1
		for j := 0; j < numListings; j++ {
			listingType := models.ListingTypeService
			if rand.Float32() < 0.4 {
				listingType = models.ListingTypeCustomService
			}

			description := descriptions[rand.Intn(len(descriptions))]
			listing := &models.Listing{
				ProviderID:       provider.ID,
				Title:            titles[rand.Intn(len(titles))],
				Description:      &description,
				ListingType:      listingType,
				ProofingRequired: rand.Float32() < 0.5,
				Price:            float64(rand.Intn(45000)+5000) / 10.0, // 500-5000 рублей
				IsActive:         true,
			}

			if err := s.listingRepo.Create(ctx, listing); err != nil {
				return nil, fmt.Errorf("failed to create listing: %w", err)
			}
			listings = append(listings, listing)
		}
	}

	return listings, nil
}

// generateOrders создаёт заказы и проводит каждый на случайную глубину по
// жизненному циклу, включая согласование макетов, отмены и возвраты.
func (s *SeedService) generateOrders(ctx context.Context, customers []*models.User, listings []*models.Listing, count int) error {
	requirementsPool := []string{
		"Нужна гравировка инициалов «А.В.» на лицевой стороне.",
		"Пришлю эскиз после оформления заказа, нужно строгое соответствие.",
		"Подарок к юбилею, важно успеть к 15 числу.",
		"Цвет как на третьем фото в объявлении, размер 20 на 30 сантиметров.",
		"Хочу матовое покрытие вместо глянцевого.",
	}
	cancelReasons := []string{
		"Передумал, заказ больше не актуален",
		"Нашёл другого мастера ближе к дому",
		"Не устроили сроки изготовления",
	}
	refundReasons := []string{
		"Изделие пришло с царапиной на лицевой стороне",
		"Размер не совпадает с согласованным",
		"Оттенок заметно отличается от макета",
	}

	for i := 0; i < count; i++ {
		customer := customers[rand.Intn(len(customers))]
		listing := listings[rand.Intn(len(listings))]
		if listing.ProviderID == customer.ID {
			continue
		}

		status := models.OrderStatusPendingOrderReceived
		if rand.Float32() < 0.3 {
			status = models.OrderStatusPendingConsultation
		}

		var requirements *string
		if rand.Float32() < 0.7 {
			req := requirementsPool[rand.Intn(len(requirementsPool))]
			requirements = &req
		}

		order := &models.ProductionOrder{
			ListingID:        listing.ID,
			CustomerID:       customer.ID,
			ProviderID:       listing.ProviderID,
			Title:            listing.Title,
			Requirements:     requirements,
			Status:           status,
			ProofingRequired: listing.ProofingRequired,
			EscrowAmount:     listing.Price,
		}

		if err := s.orderRepo.Create(ctx, order); err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}

		depth := rand.Intn(9)
		order, err := s.advanceOrder(ctx, order, depth)
		if err != nil {
			return fmt.Errorf("failed to advance order: %w", err)
		}

		// Часть активных заказов отменяется одним из участников.
		if !order.Status.IsTerminal() && rand.Float32() < 0.15 {
			actorID := order.CustomerID
			if rand.Float32() < 0.4 {
				actorID = order.ProviderID
			}
			reason := cancelReasons[rand.Intn(len(cancelReasons))]
			if _, err := s.orderRepo.CancelAndRefund(ctx, order.ID, actorID, reason); err != nil {
				return fmt.Errorf("failed to cancel order: %w", err)
			}
			continue
		}

		// По части отправленных заказов заказчики просят частичный возврат.
		if order.Status == models.OrderStatusShipped && rand.Float32() < 0.3 {
			refund := &models.RefundRequest{
				OrderID:    order.ID,
				CustomerID: order.CustomerID,
				Amount:     order.EscrowAmount * 0.2,
				Reason:     refundReasons[rand.Intn(len(refundReasons))],
			}
			if err := s.refundRepo.Create(ctx, refund); err != nil {
				return fmt.Errorf("failed to create refund request: %w", err)
			}

			if rand.Float32() < 0.5 {
				decision := models.RefundDecisionApprove
				response := "Согласен, приношу извинения за брак"
				if rand.Float32() < 0.3 {
					decision = models.RefundDecisionReject
					response = "Изделие соответствует согласованному макету"
				}
				if _, err := s.refundRepo.Resolve(ctx, refund.ID, order.ProviderID, decision, &response); err != nil {
					return fmt.Errorf("failed to resolve refund request: %w", err)
				}
			}
		}
	}

	return nil
}

// advanceOrder делает depth шагов по жизненному циклу заказа.
func (s *SeedService) advanceOrder(ctx context.Context, order *models.ProductionOrder, depth int) (*models.ProductionOrder, error) {
	proofComment := "Макет по вашему эскизу, посмотрите внимательно на расположение надписи"
	var err error

	for i := 0; i < depth && !order.Status.IsTerminal(); i++ {
		switch order.Status {
		case models.OrderStatusPendingConsultation:
			order, err = s.orderRepo.UpdateStatus(ctx, repository.StatusUpdate{
				OrderID:     order.ID,
				ActorID:     order.ProviderID,
				ToStatus:    models.OrderStatusPendingOrderReceived,
				Description: "Консультация завершена, заказ ожидает подтверждения мастера",
			})

		case models.OrderStatusPendingOrderReceived:
			order, err = s.orderRepo.UpdateStatus(ctx, repository.StatusUpdate{
				OrderID:     order.ID,
				ActorID:     order.ProviderID,
				ToStatus:    models.OrderStatusOrderReceived,
				Description: "Мастер подтвердил получение заказа",
			})

		case models.OrderStatusOrderReceived:
			if order.ProofingRequired {
				// Отправка макета переводит заказ на согласование.
				if _, err = s.proofRepo.Submit(ctx, order.ID, order.ProviderID, &proofComment, []string{"seed/proof_v1.png"}); err != nil {
					return nil, err
				}
				order, err = s.orderRepo.GetByID(ctx, order.ID)
			} else {
				order, err = s.orderRepo.UpdateStatus(ctx, repository.StatusUpdate{
					OrderID:     order.ID,
					ActorID:     order.ProviderID,
					ToStatus:    models.OrderStatusInProduction,
					Description: "Заказ взят в производство",
				})
			}

		case models.OrderStatusPendingApproval:
			proofs, listErr := s.proofRepo.ListByOrder(ctx, order.ID)
			if listErr != nil {
				return nil, listErr
			}
			if len(proofs) > 0 && proofs[0].Status == models.ProofStatusPending {
				if _, err = s.proofRepo.Resolve(ctx, proofs[0].ID, order.CustomerID, models.ProofDecisionApprove, nil); err != nil {
					return nil, err
				}
			}
			order, err = s.orderRepo.UpdateStatus(ctx, repository.StatusUpdate{
				OrderID:              order.ID,
				ActorID:              order.ProviderID,
				ToStatus:             models.OrderStatusInProduction,
				Description:          "Заказ взят в производство",
				RequireApprovedProof: order.ProofingRequired,
			})

		case models.OrderStatusInProduction:
			order, err = s.orderRepo.UpdateStatus(ctx, repository.StatusUpdate{
				OrderID:              order.ID,
				ActorID:              order.ProviderID,
				ToStatus:             models.OrderStatusReadyForDelivery,
				Description:          "Заказ готов к отправке",
				RequireApprovedProof: order.ProofingRequired,
			})

		case models.OrderStatusReadyForDelivery:
			tracking := fmt.Sprintf("RU%09d", rand.Intn(1000000000))
			carrier := "Почта России"
			order, err = s.orderRepo.UpdateStatus(ctx, repository.StatusUpdate{
				OrderID:        order.ID,
				ActorID:        order.ProviderID,
				ToStatus:       models.OrderStatusShipped,
				Description:    fmt.Sprintf("Заказ отправлен, трек-номер %s", tracking),
				TrackingNumber: &tracking,
				Carrier:        &carrier,
			})

		case models.OrderStatusShipped:
			order, _, err = s.orderRepo.CompleteAndRelease(ctx, order.ID, order.CustomerID, s.feeRate)
		}

		if err != nil {
			return nil, err
		}
	}

	return order, nil
}

// toLatin транслитерирует русские имена в латиницу для email.
func toLatin(s string) string {
	translit := map[rune]string{
		'а': "a", 'б': "b", 'в': "v", 'г': "g", 'д': "d", 'е': "e", 'ё': "yo",
		'ж': "zh", 'з': "z", 'и': "i", 'й': "y", 'к': "k", 'л': "l", 'м': "m",
		'н': "n", 'о': "o", 'п': "p", 'р': "r", 'с': "s", 'т': "t", 'у': "u",
		'ф': "f", 'х': "h", 'ц': "ts", 'ч': "ch", 'ш': "sh", 'щ': "sch",
		'ъ': "", 'ы': "y", 'ь': "", 'э': "e", 'ю': "yu", 'я': "ya",
		'А': "A", 'Б': "B", 'В': "V", 'Г': "G", 'Д': "D", 'Е': "E", 'Ё': "Yo",
		'Ж': "Zh", 'З': "Z", 'И': "I", 'Й': "Y", 'К': "K", 'Л': "L", 'М': "M",
		'Н': "N", 'О': "O", 'П': "P", 'Р': "R", 'С': "S", 'Т': "T", 'У': "U",
		'Ф': "F", 'Х': "H", 'Ц': "Ts", 'Ч': "Ch", 'Ш': "Sh", 'Щ': "Sch",
		'Ъ': "", 'Ы': "Y", 'Ь': "", 'Э': "E", 'Ю': "Yu", 'Я': "Ya",
	}

	result := ""
	for _, r := range s {
		if val, ok := translit[r]; ok {
			result += val
		} else {
			result += string(r)
		}
	}
	return result
}
