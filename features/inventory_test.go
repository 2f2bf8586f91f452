package features

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/cucumber/godog"
	"github.com/fekuna/school-inventory-service/internal/apperror"
	"github.com/fekuna/school-inventory-service/internal/distribution"
	distdto "github.com/fekuna/school-inventory-service/internal/distribution/dto"
	distrepo "github.com/fekuna/school-inventory-service/internal/distribution/repository"
	distusecase "github.com/fekuna/school-inventory-service/internal/distribution/usecase"
	"github.com/fekuna/school-inventory-service/internal/item"
	itemdto "github.com/fekuna/school-inventory-service/internal/item/dto"
	itemrepo "github.com/fekuna/school-inventory-service/internal/item/repository"
	itemusecase "github.com/fekuna/school-inventory-service/internal/item/usecase"
	"github.com/fekuna/school-inventory-service/internal/model"
	"github.com/fekuna/school-inventory-service/internal/replenishment"
	repdto "github.com/fekuna/school-inventory-service/internal/replenishment/dto"
	reprepo "github.com/fekuna/school-inventory-service/internal/replenishment/repository"
	repusecase "github.com/fekuna/school-inventory-service/internal/replenishment/usecase"
	"github.com/fekuna/school-inventory-service/internal/stock"
	stockdto "github.com/fekuna/school-inventory-service/internal/stock/dto"
	stockrepo "github.com/fekuna/school-inventory-service/internal/stock/repository"
	stockusecase "github.com/fekuna/school-inventory-service/internal/stock/usecase"
	"github.com/fekuna/school-inventory-service/pkg/broker"
	"github.com/fekuna/school-inventory-service/pkg/cache"
	"github.com/fekuna/school-inventory-service/pkg/database/memory"
	"github.com/fekuna/school-inventory-service/pkg/lock"
	"github.com/fekuna/school-inventory-service/pkg/logger"
	"github.com/fekuna/school-inventory-service/pkg/metrics"
	"github.com/shopspring/decimal"
)

var staff = model.Actor{ID: "staff-1", Kind: model.ActorStaff}

type inventoryTestContext struct {
	items         item.UseCase
	stock         stock.UseCase
	distribution  distribution.UseCase
	replenishment replenishment.UseCase

	itemIDs       map[string]string
	request       *model.DistributionRequest
	restock       *model.ReplenishmentRequest
	err           error
	distributeErr []error
}

func (c *inventoryTestContext) reset() {
	store := memory.NewStore()
	locker := lock.NewLocalLocker()
	m := metrics.New()
	log := logger.NewNop()

	itemRepo := itemrepo.NewMemoryRepository(store)
	c.stock = stockusecase.NewStockUseCase(
		stockrepo.NewMemoryRepository(store, itemRepo), store, locker,
		cache.NewNop(), broker.NewNopPublisher(), m, log, false,
	)
	c.items = itemusecase.NewItemUseCase(itemRepo, c.stock, store, cache.NewNop(), 0, nil, "items", log)
	c.distribution = distusecase.NewDistributionUseCase(distrepo.NewMemoryRepository(store), itemRepo, c.stock, locker, m, log)
	c.replenishment = repusecase.NewReplenishmentUseCase(reprepo.NewMemoryRepository(store), itemRepo, c.stock, m, log)

	c.itemIDs = map[string]string{}
	c.request = nil
	c.restock = nil
	c.err = nil
	c.distributeErr = nil
}

func student(id string) model.Actor {
	return model.Actor{ID: id, Kind: model.ActorStudent}
}

func (c *inventoryTestContext) itemID(code string) (string, error) {
	id, ok := c.itemIDs[code]
	if !ok {
		return "", fmt.Errorf("unknown item %q", code)
	}
	return id, nil
}

func (c *inventoryTestContext) anItemWithQuantityAndMinimum(code string, quantity, minimum int) error {
	it, err := c.items.CreateItem(context.Background(), staff, &itemdto.CreateItemInput{
		Code: code, Name: code, MinimumQuantity: int64(minimum),
		UnitPrice: decimal.NewFromInt(1), InitialQuantity: int64(quantity),
	})
	if err != nil {
		return err
	}
	c.itemIDs[code] = it.ID
	return nil
}

func (c *inventoryTestContext) studentRequestsUnitsOf(requester string, quantity int, code string) error {
	id, err := c.itemID(code)
	if err != nil {
		return err
	}
	c.request, c.err = c.distribution.Submit(context.Background(), student(requester), &distdto.SubmitInput{
		ItemID: id, Quantity: int64(quantity), Purpose: "class",
	})
	return c.err
}

func (c *inventoryTestContext) studentHoldsAnApprovedRequest(requester string, quantity int, code string) error {
	if err := c.studentRequestsUnitsOf(requester, quantity, code); err != nil {
		return err
	}
	if err := c.staffApprovesTheRequest(); err != nil {
		return err
	}
	return c.err
}

func (c *inventoryTestContext) staffApprovesTheRequestFor(quantity int) error {
	q := int64(quantity)
	return c.approve(&q)
}

func (c *inventoryTestContext) staffApprovesTheRequest() error {
	return c.approve(nil)
}

func (c *inventoryTestContext) approve(quantity *int64) error {
	if c.request == nil {
		return errors.New("no request submitted")
	}
	req, err := c.distribution.Approve(context.Background(), staff, &distdto.ApproveInput{ID: c.request.ID, ApprovedQuantity: quantity})
	c.err = err
	if err == nil {
		c.request = req
	}
	return nil
}

func (c *inventoryTestContext) staffDistributesTheRequest() error {
	req, _, err := c.distribution.Distribute(context.Background(), staff, c.request.ID, nil)
	c.err = err
	if err == nil {
		c.request = req
	}
	return nil
}

func (c *inventoryTestContext) studentCancelsTheRequest(requester string) error {
	_, c.err = c.distribution.Cancel(context.Background(), student(requester), c.request.ID)
	return nil
}

func (c *inventoryTestContext) staffRemovesUnitsByAdjustment(quantity int, code string) error {
	id, err := c.itemID(code)
	if err != nil {
		return err
	}
	_, err = c.stock.AdjustStock(context.Background(), staff, &stockdto.AdjustStockInput{
		ItemID: id, Kind: model.MovementDebit, Quantity: int64(quantity), Reason: "breakage",
	})
	return err
}

func (c *inventoryTestContext) staffRequestsAReplenishment(quantity int, code string) error {
	id, err := c.itemID(code)
	if err != nil {
		return err
	}
	c.restock, err = c.replenishment.Submit(context.Background(), staff, &repdto.SubmitInput{
		ItemID: id, Quantity: int64(quantity), Reason: "term start",
	})
	return err
}

func (c *inventoryTestContext) staffApprovesTheReplenishmentFor(quantity int) error {
	q := int64(quantity)
	req, err := c.replenishment.Approve(context.Background(), staff, &repdto.ApproveInput{ID: c.restock.ID, ApprovedQuantity: &q})
	c.err = err
	if err == nil {
		c.restock = req
	}
	return nil
}

func (c *inventoryTestContext) staffReceivesTheReplenishment() error {
	req, _, err := c.replenishment.Receive(context.Background(), staff, &repdto.ReceiveInput{ID: c.restock.ID})
	c.err = err
	if err == nil {
		c.restock = req
	}
	return nil
}

func (c *inventoryTestContext) allApprovedRequestsAreDistributedConcurrently() error {
	approved, _, err := c.distribution.List(context.Background(), &distdto.RequestFilters{Status: model.DistributionApproved})
	if err != nil {
		return err
	}

	var (
		wg  sync.WaitGroup
		mu  sync.Mutex
		out []error
	)
	for _, req := range approved {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			_, _, err := c.distribution.Distribute(context.Background(), staff, id, nil)
			mu.Lock()
			out = append(out, err)
			mu.Unlock()
		}(req.ID)
	}
	wg.Wait()
	c.distributeErr = out
	return nil
}

func (c *inventoryTestContext) theOperationSucceeds() error {
	return c.err
}

func (c *inventoryTestContext) theOperationFailsWith(kind string) error {
	if c.err == nil {
		return fmt.Errorf("expected %s, operation succeeded", kind)
	}
	if got := apperror.KindOf(c.err).String(); got != kind {
		return fmt.Errorf("expected %s, got %s (%v)", kind, got, c.err)
	}
	return nil
}

func (c *inventoryTestContext) theQuantityOfIs(code string, quantity int) error {
	id, err := c.itemID(code)
	if err != nil {
		return err
	}
	it, err := c.items.GetItem(context.Background(), id)
	if err != nil {
		return err
	}
	if it.Quantity != int64(quantity) {
		return fmt.Errorf("expected quantity %d, got %d", quantity, it.Quantity)
	}
	return nil
}

func (c *inventoryTestContext) theLastMovementOfIs(code, kind string, from, to int) error {
	id, err := c.itemID(code)
	if err != nil {
		return err
	}
	mvs, _, err := c.stock.ListMovements(context.Background(), &stockdto.MovementFilters{ItemID: id, PageSize: 1})
	if err != nil {
		return err
	}
	if len(mvs) == 0 {
		return errors.New("no movements recorded")
	}
	mv := mvs[0]
	if string(mv.Kind) != kind || mv.PreviousQuantity != int64(from) || mv.NewQuantity != int64(to) {
		return fmt.Errorf("expected %s %d->%d, got %s %d->%d", kind, from, to, mv.Kind, mv.PreviousQuantity, mv.NewQuantity)
	}
	return nil
}

func (c *inventoryTestContext) theRequestStatusIs(status string) error {
	req, err := c.distribution.Get(context.Background(), c.request.ID)
	if err != nil {
		return err
	}
	if string(req.Status) != status {
		return fmt.Errorf("expected request status %s, got %s", status, req.Status)
	}
	return nil
}

func (c *inventoryTestContext) theReplenishmentStatusIs(status string) error {
	req, err := c.replenishment.Get(context.Background(), c.restock.ID)
	if err != nil {
		return err
	}
	if string(req.Status) != status {
		return fmt.Errorf("expected replenishment status %s, got %s", status, req.Status)
	}
	return nil
}

func (c *inventoryTestContext) distributionsSucceed(n int) error {
	got := 0
	for _, err := range c.distributeErr {
		if err == nil {
			got++
		}
	}
	if got != n {
		return fmt.Errorf("expected %d successful distributions, got %d (%v)", n, got, c.distributeErr)
	}
	return nil
}

func (c *inventoryTestContext) distributionsFailWith(n int, kind string) error {
	got := 0
	for _, err := range c.distributeErr {
		if err != nil && apperror.KindOf(err).String() == kind {
			got++
		}
	}
	if got != n {
		return fmt.Errorf("expected %d distributions failing with %s, got %d (%v)", n, kind, got, c.distributeErr)
	}
	return nil
}

func (c *inventoryTestContext) requestsOfAreStill(n int, code, status string) error {
	id, err := c.itemID(code)
	if err != nil {
		return err
	}
	_, total, err := c.distribution.List(context.Background(), &distdto.RequestFilters{
		ItemID: id, Status: model.DistributionStatus(status),
	})
	if err != nil {
		return err
	}
	if total != n {
		return fmt.Errorf("expected %d %s requests, got %d", n, status, total)
	}
	return nil
}

func (c *inventoryTestContext) theLedgerOfIsConsistent(code string) error {
	id, err := c.itemID(code)
	if err != nil {
		return err
	}
	report, err := c.stock.VerifyLedger(context.Background(), id)
	if err != nil {
		return err
	}
	if !report.Consistent {
		return fmt.Errorf("ledger replays to %d, stored %d", report.ReplayedQuantity, report.StoredQuantity)
	}
	return nil
}

func InitializeScenario(ctx *godog.ScenarioContext) {
	tc := &inventoryTestContext{}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		tc.reset()
		return ctx, nil
	})

	// Given steps
	ctx.Step(`^an item "([^"]*)" with quantity (\d+) and minimum (\d+)$`, tc.anItemWithQuantityAndMinimum)
	ctx.Step(`^student "([^"]*)" holds an approved request for (\d+) units of "([^"]*)"$`, tc.studentHoldsAnApprovedRequest)

	// When steps
	ctx.Step(`^student "([^"]*)" requests (\d+) units of "([^"]*)"$`, tc.studentRequestsUnitsOf)
	ctx.Step(`^staff approves the request for (\d+) units$`, tc.staffApprovesTheRequestFor)
	ctx.Step(`^staff approves the request$`, tc.staffApprovesTheRequest)
	ctx.Step(`^staff distributes the request$`, tc.staffDistributesTheRequest)
	ctx.Step(`^student "([^"]*)" cancels the request$`, tc.studentCancelsTheRequest)
	ctx.Step(`^staff removes (\d+) units of "([^"]*)" by adjustment$`, tc.staffRemovesUnitsByAdjustment)
	ctx.Step(`^staff requests a replenishment of (\d+) units of "([^"]*)"$`, tc.staffRequestsAReplenishment)
	ctx.Step(`^staff approves the replenishment for (\d+) units$`, tc.staffApprovesTheReplenishmentFor)
	ctx.Step(`^staff receives the replenishment$`, tc.staffReceivesTheReplenishment)
	ctx.Step(`^all approved requests are distributed concurrently$`, tc.allApprovedRequestsAreDistributedConcurrently)

	// Then steps
	ctx.Step(`^the operation succeeds$`, tc.theOperationSucceeds)
	ctx.Step(`^the operation fails with "([^"]*)"$`, tc.theOperationFailsWith)
	ctx.Step(`^the quantity of "([^"]*)" is (\d+)$`, tc.theQuantityOfIs)
	ctx.Step(`^the last movement of "([^"]*)" is a "([^"]*)" from (\d+) to (\d+)$`, tc.theLastMovementOfIs)
	ctx.Step(`^the request status is "([^"]*)"$`, tc.theRequestStatusIs)
	ctx.Step(`^the replenishment status is "([^"]*)"$`, tc.theReplenishmentStatusIs)
	ctx.Step(`^(\d+) distributions? succeeds?$`, tc.distributionsSucceed)
	ctx.Step(`^(\d+) distributions? fails? with "([^"]*)"$`, tc.distributionsFailWith)
	ctx.Step(`^(\d+) requests? of "([^"]*)" (?:is|are) still "([^"]*)"$`, tc.requestsOfAreStill)
	ctx.Step(`^the ledger of "([^"]*)" is consistent$`, tc.theLedgerOfIsConsistent)
}

func TestFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: InitializeScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"inventory.feature"},
			Strict:   true,
			TestingT: t,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}
