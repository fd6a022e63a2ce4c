package serializer_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tu-usuario/steel-pos/internal/application/serializer"
	"github.com/tu-usuario/steel-pos/internal/domain"
	"github.com/tu-usuario/steel-pos/pkg/logger"
)

func newSerializer(t *testing.T, cfg serializer.Config) *serializer.Serializer {
	t.Helper()
	s := serializer.New(cfg, logger.NewNop(), nil)
	t.Cleanup(s.Close)
	return s
}

func TestEnqueue_FIFO(t *testing.T) {
	s := newSerializer(t, serializer.Config{QueueSize: 16, AdmissionTimeout: 5 * time.Second})

	var mu sync.Mutex
	var order []int

	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := 0; i < 5; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			// Encolado escalonado para fijar el orden de llegada.
			time.Sleep(time.Duration(i*20) * time.Millisecond)
			_, err := s.Enqueue(context.Background(), "", func(ctx context.Context) (any, error) {
				mu.Lock()
				order = append(order, i)
				mu.Unlock()
				return i, nil
			})
			assert.NoError(t, err)
		}()
	}
	close(start)
	wg.Wait()

	assert.Equal(t, []int{0, 1, 2, 3, 4}, order, "las operaciones deben arrancar en orden de llegada")
}

func TestEnqueue_UnaSolaEnVuelo(t *testing.T) {
	s := newSerializer(t, serializer.Config{QueueSize: 16, AdmissionTimeout: 5 * time.Second})

	var inFlight, maxInFlight int32
	var mu sync.Mutex

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.Enqueue(context.Background(), "", func(ctx context.Context) (any, error) {
				mu.Lock()
				inFlight++
				if inFlight > maxInFlight {
					maxInFlight = inFlight
				}
				mu.Unlock()
				time.Sleep(5 * time.Millisecond)
				mu.Lock()
				inFlight--
				mu.Unlock()
				return nil, nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 1, maxInFlight, "a lo sumo una operación en vuelo")
}

func TestEnqueue_ResultadoPropio(t *testing.T) {
	s := newSerializer(t, serializer.Config{QueueSize: 16, AdmissionTimeout: 5 * time.Second})

	errFalla := errors.New("sin stock")

	type out struct {
		v   any
		err error
	}
	results := make([]out, 2)
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		v, err := s.Enqueue(context.Background(), "op-falla", func(ctx context.Context) (any, error) {
			return nil, errFalla
		})
		results[0] = out{v, err}
	}()
	go func() {
		defer wg.Done()
		time.Sleep(10 * time.Millisecond)
		v, err := s.Enqueue(context.Background(), "op-ok", func(ctx context.Context) (any, error) {
			return "factura-7", nil
		})
		results[1] = out{v, err}
	}()
	wg.Wait()

	// La falla de una operación nunca se filtra al caller de otra.
	assert.ErrorIs(t, results[0].err, errFalla)
	assert.NoError(t, results[1].err)
	assert.Equal(t, "factura-7", results[1].v)
}

func TestEnqueue_PanicoContenido(t *testing.T) {
	s := newSerializer(t, serializer.Config{QueueSize: 16, AdmissionTimeout: 5 * time.Second})

	_, err := s.Enqueue(context.Background(), "op-panico", func(ctx context.Context) (any, error) {
		panic("algo muy malo")
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pánico")

	// El actor sigue vivo.
	v, err := s.Enqueue(context.Background(), "op-despues", func(ctx context.Context) (any, error) {
		return 42, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 42, v)
}

func TestEnqueue_TimeoutDeAdmision(t *testing.T) {
	s := newSerializer(t, serializer.Config{QueueSize: 16, AdmissionTimeout: 50 * time.Millisecond})

	// Una operación lenta bloquea el actor más allá de la ventana de admisión.
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, _ = s.Enqueue(context.Background(), "lenta", func(ctx context.Context) (any, error) {
			time.Sleep(200 * time.Millisecond)
			return nil, nil
		})
	}()
	time.Sleep(10 * time.Millisecond)

	ran := false
	_, err := s.Enqueue(context.Background(), "tardia", func(ctx context.Context) (any, error) {
		ran = true
		return nil, nil
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrOperationTimeout)
	assert.False(t, ran, "una operación vencida no debe ejecutarse")
	wg.Wait()
}

func TestClose_PendientesReciben(t *testing.T) {
	s := serializer.New(serializer.Config{QueueSize: 16, AdmissionTimeout: 5 * time.Second}, logger.NewNop(), nil)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, _ = s.Enqueue(context.Background(), "lenta", func(ctx context.Context) (any, error) {
			time.Sleep(100 * time.Millisecond)
			return nil, nil
		})
	}()
	time.Sleep(10 * time.Millisecond)

	errCh := make(chan error, 1)
	go func() {
		_, err := s.Enqueue(context.Background(), "pendiente", func(ctx context.Context) (any, error) {
			return nil, nil
		})
		errCh <- err
	}()
	time.Sleep(10 * time.Millisecond)

	s.Close()
	wg.Wait()
	assert.ErrorIs(t, <-errCh, domain.ErrSerializerClosed)
}
